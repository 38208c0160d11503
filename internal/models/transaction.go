package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Crypto transaction statuses. Transitions are one-directional:
// pending -> confirmed, pending -> failed, pending -> expired.
const (
	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
	TxStatusExpired   = "expired"
)

// CryptoTransaction records a blockchain payment for a product
type CryptoTransaction struct {
	BaseModel

	ProductID string `json:"product_id" gorm:"not null;index"`
	UserID    string `json:"user_id" gorm:"not null;index"` // buyer

	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"` // fiat amount in USD
	CryptoAmount string          `json:"crypto_amount" gorm:"size:32"`              // chain amount, 6 decimal places
	Currency     string          `json:"currency" gorm:"size:10"`

	Status string `json:"status" gorm:"not null;size:20;index"`

	GatewayPaymentID string `json:"gateway_payment_id" gorm:"size:100"`
	TransactionHash  string `json:"transaction_hash" gorm:"size:100;index"`

	// Client generated token preventing duplicate charges on replayed submissions
	IdempotencyKey string `json:"idempotency_key" gorm:"size:64;uniqueIndex"`

	CompletedAt *time.Time `json:"completed_at"`
}

// TableName specifies the table name
func (CryptoTransaction) TableName() string {
	return "crypto_transactions"
}

// IsTerminal reports whether the transaction reached a final state
func (t *CryptoTransaction) IsTerminal() bool {
	return t.Status == TxStatusConfirmed || t.Status == TxStatusFailed || t.Status == TxStatusExpired
}
