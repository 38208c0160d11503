package services

import (
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/google/uuid"
)

// DeepLinkFallbackDelay is how long a mobile client should wait for a
// wallet app deep link before falling back to the download page
const DeepLinkFallbackDelay = time.Second

// WalletProvider describes an Algorand wallet from the provider registry
type WalletProvider struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DownloadURL    string `json:"download_url"`
	MobileDeepLink string `json:"mobile_deep_link"`
	Installed      bool   `json:"installed"`
}

// walletRegistry lists every wallet the storefront knows how to talk to
var walletRegistry = []WalletProvider{
	{
		ID:             "pera",
		Name:           "Pera Wallet",
		Description:    "Most popular Algorand wallet",
		DownloadURL:    "https://perawallet.app/",
		MobileDeepLink: "pera-wallet://",
	},
	{
		ID:             "defly",
		Name:           "Defly Wallet",
		Description:    "DeFi-focused Algorand wallet",
		DownloadURL:    "https://defly.app/",
		MobileDeepLink: "defly://",
	},
	{
		ID:             "exodus",
		Name:           "Exodus Wallet",
		Description:    "Multi-chain wallet with Algorand support",
		DownloadURL:    "https://www.exodus.com/",
		MobileDeepLink: "exodus://",
	},
	{
		ID:             "kibisis",
		Name:           "Kibisis Wallet",
		Description:    "Privacy-focused Algorand wallet",
		DownloadURL:    "https://kibis.is/",
		MobileDeepLink: "kibisis://",
	},
}

// WalletNotInstalledError reports a provider missing from the registry of
// installed wallets, carrying the metadata a client needs to install it
type WalletNotInstalledError struct {
	Provider WalletProvider
}

func (e *WalletNotInstalledError) Error() string {
	return fmt.Sprintf("%s not detected. Please install the wallet and try again.", e.Provider.Name)
}

// ErrUnknownProvider is returned for provider IDs outside the registry
var ErrUnknownProvider = fmt.Errorf("wallet provider not found")

// ErrSigningUnavailable is returned when a session's provider cannot sign
// server-side; the client must submit pre-signed transaction bytes instead
var ErrSigningUnavailable = fmt.Errorf("wallet signing not available for this session")

// WalletSession is an active connection to a wallet provider. It exposes
// the active account observed by the payment flow.
type WalletSession struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	ProviderID string `json:"provider_id"`
	Account    string `json:"account"`

	signKey ed25519.PrivateKey
}

// Address returns the active account address
func (s *WalletSession) Address() string {
	return s.Account
}

// SignTransactions signs the given msgpack-encoded unsigned transactions.
// Only sessions backed by a dev signing key can sign server-side.
func (s *WalletSession) SignTransactions(txns [][]byte) ([][]byte, error) {
	if s.signKey == nil {
		return nil, ErrSigningUnavailable
	}
	signed := make([][]byte, 0, len(txns))
	for _, raw := range txns {
		var txn types.Transaction
		if err := msgpack.Decode(raw, &txn); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		_, stx, err := crypto.SignTransaction(s.signKey, txn)
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}
		signed = append(signed, stx)
	}
	return signed, nil
}

// WalletService wraps the wallet provider registry and tracks active sessions
type WalletService struct {
	mu        sync.RWMutex
	sessions  map[string]*WalletSession
	installed map[string]bool

	devProvider string
	devKey      ed25519.PrivateKey
	devAccount  string
}

// NewWalletService creates a wallet service from the configured provider set
func NewWalletService() (*WalletService, error) {
	w := &WalletService{
		sessions:  make(map[string]*WalletSession),
		installed: make(map[string]bool),
	}
	for _, id := range config.AppConfig.WalletProviders {
		w.installed[id] = true
	}

	if mn := config.AppConfig.WalletDevMnemonic; mn != "" {
		key, err := mnemonic.ToPrivateKey(mn)
		if err != nil {
			return nil, fmt.Errorf("invalid WALLET_DEV_MNEMONIC: %w", err)
		}
		account, err := crypto.AccountFromPrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to derive dev account: %w", err)
		}
		w.devKey = key
		w.devAccount = account.Address.String()
		w.devProvider = config.AppConfig.WalletDevProvider
	}

	return w, nil
}

// Providers returns the registry with per-provider installed flags
func (w *WalletService) Providers() []WalletProvider {
	providers := make([]WalletProvider, len(walletRegistry))
	copy(providers, walletRegistry)
	for i := range providers {
		providers[i].Installed = w.installed[providers[i].ID]
	}
	return providers
}

// lookupProvider finds registry metadata by ID
func lookupProvider(providerID string) (WalletProvider, bool) {
	for _, p := range walletRegistry {
		if p.ID == providerID {
			return p, true
		}
	}
	return WalletProvider{}, false
}

// Connect opens a session with the given provider for a user. A provider
// absent from the installed set yields a WalletNotInstalledError carrying
// the deep link and download page the client should fall back to.
func (w *WalletService) Connect(userID, providerID string) (*WalletSession, error) {
	provider, ok := lookupProvider(providerID)
	if !ok {
		return nil, ErrUnknownProvider
	}
	if !w.installed[providerID] {
		return nil, &WalletNotInstalledError{Provider: provider}
	}

	session := &WalletSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProviderID: providerID,
	}
	if providerID == w.devProvider && w.devKey != nil {
		session.signKey = w.devKey
		session.Account = w.devAccount
	}

	w.mu.Lock()
	w.sessions[session.ID] = session
	w.mu.Unlock()

	return session, nil
}

// SetAccount records the active account address reported by the client wallet
func (w *WalletService) SetAccount(sessionID, address string) error {
	if _, err := types.DecodeAddress(address); err != nil {
		return fmt.Errorf("invalid account address: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	session, ok := w.sessions[sessionID]
	if !ok {
		return fmt.Errorf("wallet session not found")
	}
	session.Account = address
	return nil
}

// Get returns an active session by ID
func (w *WalletService) Get(sessionID string) (*WalletSession, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	session, ok := w.sessions[sessionID]
	return session, ok
}

// Disconnect tears down every active session belonging to the user
func (w *WalletService) Disconnect(userID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	removed := 0
	for id, session := range w.sessions {
		if session.UserID == userID {
			delete(w.sessions, id)
			removed++
		}
	}
	return removed
}
