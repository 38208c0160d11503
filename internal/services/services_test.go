package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/models"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	algotypes "github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// setupTest points the package globals at a fresh in-memory database and a
// known configuration for the duration of one test
func setupTest(t *testing.T) {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:                  "8080",
		Mode:                  "test",
		BaseURL:               "http://localhost:8080",
		AuthJWTSecret:         "test-auth-secret",
		StorageRoot:           t.TempDir(),
		StorageURLSecret:      "test-url-secret",
		DownloadTTL:           3600,
		MerchantAddress:       testAddress(9),
		AlgoRate:              decimal.RequireFromString("0.15"),
		ConfirmRounds:         4,
		PendingTxTTLMinutes:   30,
		ReconcileSweepMinutes: 5,
		DemoRateLimitMinutes:  1,
		WalletProviders:       []string{"pera", "defly", "exodus", "kibisis"},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	// A second connection would see its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db
}

// testAddress derives a syntactically valid Algorand address from a seed byte
func testAddress(seed byte) string {
	var addr algotypes.Address
	addr[0] = seed
	return addr.String()
}

func createTestProduct(t *testing.T, price string, published bool) *models.Product {
	t.Helper()
	product := &models.Product{
		UserID:      "creator-1",
		Name:        "Icon Pack",
		Description: "200 vector icons",
		Price:       decimal.RequireFromString(price),
		FileURL:     "http://localhost:8080/storage/signed/product-files/creator-1/icons.zip",
		Category:    "design",
		IsPublished: published,
	}
	if err := database.CreateProduct(product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func createPendingTransaction(t *testing.T, product *models.Product, buyerID, key string) *models.CryptoTransaction {
	t.Helper()
	tx := &models.CryptoTransaction{
		ProductID:      product.ID,
		UserID:         buyerID,
		Amount:         product.Price,
		CryptoAmount:   product.Price.Mul(decimal.RequireFromString("0.15")).StringFixed(6),
		Currency:       "ALGO",
		Status:         models.TxStatusPending,
		IdempotencyKey: key,
	}
	if err := database.CreateTransaction(tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

// fakeNode is an in-process stand-in for an Algorand node
type fakeNode struct {
	submitErr  error
	confirmErr error

	submitted [][]byte
	nextTxID  string
}

func (f *fakeNode) SuggestedParams(ctx context.Context) (algotypes.SuggestedParams, error) {
	return algotypes.SuggestedParams{
		Fee:             1000,
		FlatFee:         true,
		MinFee:          1000,
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
		FirstRoundValid: 1000,
		LastRoundValid:  2000,
	}, nil
}

func (f *fakeNode) SendRawTransaction(ctx context.Context, signedTxn []byte) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, signedTxn)
	if f.nextTxID == "" {
		return fmt.Sprintf("TXID%d", len(f.submitted)), nil
	}
	return f.nextTxID, nil
}

func (f *fakeNode) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (uint64, error) {
	if f.confirmErr != nil {
		return 0, f.confirmErr
	}
	return 1234, nil
}

// signedPaymentBytes encodes a signed payment with the given envelope
// fields. No real signature is attached; submission checks only look at
// the transaction body.
func signedPaymentBytes(t *testing.T, from, to string, microAlgos uint64) []byte {
	t.Helper()
	sender, err := algotypes.DecodeAddress(from)
	if err != nil {
		t.Fatalf("decode sender: %v", err)
	}
	receiver, err := algotypes.DecodeAddress(to)
	if err != nil {
		t.Fatalf("decode receiver: %v", err)
	}
	stx := algotypes.SignedTxn{
		Txn: algotypes.Transaction{
			Type:   algotypes.PaymentTx,
			Header: algotypes.Header{Sender: sender},
			PaymentTxnFields: algotypes.PaymentTxnFields{
				Receiver: receiver,
				Amount:   algotypes.MicroAlgos(microAlgos),
			},
		},
	}
	return msgpack.Encode(&stx)
}

// fakeSigner wraps unsigned transactions in a signed envelope without a
// real signature, the way a cooperating wallet would
type fakeSigner struct {
	address string
	signErr error
}

func (f *fakeSigner) Address() string { return f.address }

func (f *fakeSigner) SignTransactions(txns [][]byte) ([][]byte, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	signed := make([][]byte, 0, len(txns))
	for _, raw := range txns {
		var txn algotypes.Transaction
		if err := msgpack.Decode(raw, &txn); err != nil {
			return nil, err
		}
		stx := algotypes.SignedTxn{Txn: txn}
		signed = append(signed, msgpack.Encode(&stx))
	}
	return signed, nil
}

func newTestPaymentService(node *fakeNode) *PaymentService {
	return &PaymentService{
		node:          node,
		recorder:      NewEntitlementService(nil, nil),
		merchant:      config.AppConfig.MerchantAddress,
		rate:          config.AppConfig.AlgoRate,
		confirmRounds: config.AppConfig.ConfirmRounds,
	}
}
