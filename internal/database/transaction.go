package database

import (
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/models"
)

// CreateTransaction inserts a new crypto transaction
func CreateTransaction(tx *models.CryptoTransaction) error {
	return DB.Create(tx).Error
}

// GetTransactionByID gets a transaction by ID
func GetTransactionByID(id string) (*models.CryptoTransaction, error) {
	var tx models.CryptoTransaction
	if err := DB.Where("id = ?", id).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransactionByIdempotencyKey looks up a transaction by its client token
func GetTransactionByIdempotencyKey(key string) (*models.CryptoTransaction, error) {
	var tx models.CryptoTransaction
	if err := DB.Where("idempotency_key = ?", key).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// ConfirmTransaction moves a pending transaction to confirmed and records
// the on-chain reference. The guard on status keeps transitions
// one-directional: a terminal row is never touched.
func ConfirmTransaction(id, transactionHash, gatewayPaymentID string, completedAt time.Time) (int64, error) {
	result := DB.Model(&models.CryptoTransaction{}).
		Where("id = ? AND status = ?", id, models.TxStatusPending).
		Updates(map[string]interface{}{
			"status":             models.TxStatusConfirmed,
			"transaction_hash":   transactionHash,
			"gateway_payment_id": gatewayPaymentID,
			"completed_at":       completedAt,
		})
	return result.RowsAffected, result.Error
}

// MarkTransactionFailed moves a pending transaction to failed
func MarkTransactionFailed(id string) error {
	return DB.Model(&models.CryptoTransaction{}).
		Where("id = ? AND status = ?", id, models.TxStatusPending).
		Update("status", models.TxStatusFailed).Error
}

// ExpireStalePendingTransactions marks pending transactions created before
// the cutoff as expired. Returns the number of rows swept.
func ExpireStalePendingTransactions(cutoff time.Time) (int64, error) {
	result := DB.Model(&models.CryptoTransaction{}).
		Where("status = ? AND created_at < ?", models.TxStatusPending, cutoff).
		Update("status", models.TxStatusExpired)
	return result.RowsAffected, result.Error
}
