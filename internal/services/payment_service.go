package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Fatumayattani/lumi-hub/internal/blockchain"
	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Typed payment errors per failure step. None of them triggers a retry;
// recovery is always user-initiated.
var (
	ErrNoWalletConnected     = fmt.Errorf("no wallet account connected")
	ErrSignatureRejected     = fmt.Errorf("transaction signature rejected")
	ErrSubmissionRejected    = fmt.Errorf("transaction submission rejected")
	ErrConfirmationTimeout   = fmt.Errorf("transaction confirmation timed out")
	ErrDuplicateSubmission   = fmt.Errorf("payment already submitted for this purchase attempt")
	ErrIdempotencyKeyInUse   = fmt.Errorf("idempotency key belongs to another purchase attempt")
	ErrPaymentMismatch       = fmt.Errorf("signed transaction does not match the initiated payment")
	ErrProductNotPurchasable = fmt.Errorf("product cannot be purchased")
)

// Signer is the wallet-side signing capability the submitter depends on
type Signer interface {
	Address() string
	SignTransactions(txns [][]byte) ([][]byte, error)
}

// microAlgosPerAlgo is the chain's base unit scale
var microAlgosPerAlgo = decimal.NewFromInt(1_000_000)

// PaymentService builds, submits, and confirms Algorand payments addressed
// to the fixed merchant account
type PaymentService struct {
	node     blockchain.Node
	recorder *EntitlementService

	merchant      string
	rate          decimal.Decimal
	confirmRounds uint64
}

// NewPaymentService creates a payment service from the app configuration
func NewPaymentService(node blockchain.Node, recorder *EntitlementService) *PaymentService {
	return &PaymentService{
		node:          node,
		recorder:      recorder,
		merchant:      config.AppConfig.MerchantAddress,
		rate:          config.AppConfig.AlgoRate,
		confirmRounds: config.AppConfig.ConfirmRounds,
	}
}

// CryptoAmount converts a fiat price to the chain amount using the fixed
// configured rate. Returns the transfer amount in microAlgos and the
// 6-decimal display amount stored on the transaction record.
func (s *PaymentService) CryptoAmount(price decimal.Decimal) (uint64, string) {
	algos := price.Mul(s.rate)
	micro := algos.Mul(microAlgosPerAlgo).Round(0)
	return uint64(micro.IntPart()), algos.StringFixed(6)
}

// PaymentNote returns the note attached to the on-chain transaction
func PaymentNote(product *models.Product) []byte {
	return []byte(fmt.Sprintf("Payment for %s - Product ID: %s", product.Name, product.ID))
}

// Initiate creates the pending transaction record for a purchase attempt
// and builds the unsigned payment instruction the wallet must sign.
// A replayed idempotency key returns the already-created transaction
// instead of opening a second purchase attempt.
func (s *PaymentService) Initiate(ctx context.Context, buyerID, fromAddress string, product *models.Product, idempotencyKey string) (*models.CryptoTransaction, []byte, error) {
	if fromAddress == "" {
		return nil, nil, ErrNoWalletConnected
	}
	if product.IsFree() || !product.IsPublished {
		return nil, nil, ErrProductNotPurchasable
	}
	if idempotencyKey == "" {
		return nil, nil, fmt.Errorf("idempotency key is required")
	}

	if existing, err := database.GetTransactionByIdempotencyKey(idempotencyKey); err == nil {
		// A key only replays the attempt it opened; anyone else's key is
		// rejected without exposing the row
		if existing.UserID != buyerID || existing.ProductID != product.ID {
			return nil, nil, ErrIdempotencyKeyInUse
		}
		if existing.IsTerminal() {
			return existing, nil, ErrDuplicateSubmission
		}
		unsigned, err := s.buildUnsigned(ctx, fromAddress, product, existing)
		if err != nil {
			return nil, nil, err
		}
		return existing, unsigned, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	_, display := s.CryptoAmount(product.Price)

	tx := &models.CryptoTransaction{
		ProductID:      product.ID,
		UserID:         buyerID,
		Amount:         product.Price,
		CryptoAmount:   display,
		Currency:       "ALGO",
		Status:         models.TxStatusPending,
		IdempotencyKey: idempotencyKey,
	}
	if err := database.CreateTransaction(tx); err != nil {
		return nil, nil, fmt.Errorf("failed to create transaction record: %w", err)
	}

	unsigned, err := s.buildUnsigned(ctx, fromAddress, product, tx)
	if err != nil {
		return nil, nil, err
	}
	return tx, unsigned, nil
}

// buildUnsigned fetches suggested network parameters and constructs the
// unsigned payment instruction
func (s *PaymentService) buildUnsigned(ctx context.Context, fromAddress string, product *models.Product, tx *models.CryptoTransaction) ([]byte, error) {
	params, err := s.node.SuggestedParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network parameters: %w", err)
	}
	micro, _ := s.CryptoAmount(tx.Amount)
	unsigned, err := blockchain.BuildPaymentTxn(fromAddress, s.merchant, micro, PaymentNote(product), params)
	if err != nil {
		return nil, err
	}
	return unsigned, nil
}

// Submit sends a signed payment to the network, waits (bounded) for
// confirmation, and hands the confirmed payment to the entitlement
// recorder. The signed bytes must pay the merchant the initiated amount
// from the connected account; anything else is rejected before it
// reaches the network. Any failure surfaces a typed error and writes no
// entitlement.
func (s *PaymentService) Submit(ctx context.Context, tx *models.CryptoTransaction, fromAddress string, signedTxn []byte, buyerEmail string) (*models.CryptoTransaction, error) {
	if tx.IsTerminal() {
		return nil, ErrTransactionFinal
	}
	if fromAddress == "" {
		return nil, ErrNoWalletConnected
	}

	micro, _ := s.CryptoAmount(tx.Amount)
	if err := blockchain.VerifyPaymentTxn(signedTxn, fromAddress, s.merchant, micro); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentMismatch, err)
	}

	txID, err := s.node.SendRawTransaction(ctx, signedTxn)
	if err != nil {
		if markErr := database.MarkTransactionFailed(tx.ID); markErr != nil {
			return nil, fmt.Errorf("%w: %v (status update failed: %v)", ErrSubmissionRejected, err, markErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrSubmissionRejected, err)
	}

	if _, err := s.node.WaitForConfirmation(ctx, txID, s.confirmRounds); err != nil {
		// The transaction may still land later; the row stays pending and
		// the reconciliation sweep expires it if it never confirms.
		return nil, fmt.Errorf("%w: %v", ErrConfirmationTimeout, err)
	}

	if _, err := s.recorder.RecordConfirmed(tx, txID, buyerEmail); err != nil {
		return nil, err
	}

	confirmed, err := database.GetTransactionByID(tx.ID)
	if err != nil {
		return tx, nil
	}
	return confirmed, nil
}

// Purchase runs the full payment sequence against a server-side signer:
// compute amount, build instruction, sign, submit, await confirmation,
// record the entitlement
func (s *PaymentService) Purchase(ctx context.Context, wallet Signer, buyerID, buyerEmail string, product *models.Product, idempotencyKey string) (*models.CryptoTransaction, error) {
	if wallet == nil || wallet.Address() == "" {
		return nil, ErrNoWalletConnected
	}

	tx, unsigned, err := s.Initiate(ctx, buyerID, wallet.Address(), product, idempotencyKey)
	if err != nil {
		return nil, err
	}

	signed, err := wallet.SignTransactions([][]byte{unsigned})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureRejected, err)
	}

	return s.Submit(ctx, tx, wallet.Address(), signed[0], buyerEmail)
}
