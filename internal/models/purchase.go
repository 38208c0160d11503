package models

import (
	"github.com/shopspring/decimal"
)

// Purchase types
const (
	PurchaseTypeCrypto = "crypto"
	PurchaseTypeFree   = "free"
)

// UserPurchase is the entitlement record proving a buyer may download a product.
// A purchase without a transaction reference is a direct/free grant.
type UserPurchase struct {
	BaseModel

	UserID    string `json:"user_id" gorm:"not null;index:idx_user_product"`
	ProductID string `json:"product_id" gorm:"not null;index:idx_user_product"`

	TransactionID *string `json:"transaction_id" gorm:"size:36;index"`

	PurchaseType string          `json:"purchase_type" gorm:"not null;size:20"`
	AmountPaid   decimal.Decimal `json:"amount_paid" gorm:"type:decimal(10,2);not null;default:0"`
}

// TableName specifies the table name
func (UserPurchase) TableName() string {
	return "user_purchases"
}
