package services

import (
	"fmt"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/models"
	"github.com/Fatumayattani/lumi-hub/pkg/logging"

	"github.com/shopspring/decimal"
)

// ErrTransactionFinal is returned when a transaction already reached a
// terminal state and cannot transition again
var ErrTransactionFinal = fmt.Errorf("transaction already in a terminal state")

// PartialFailureError reports an entitlement write that failed after the
// payment was already final on-chain. The payment is never reversed; the
// transaction record is kept for manual reconciliation.
type PartialFailureError struct {
	TransactionID string
	Err           error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("payment %s is confirmed but the entitlement write failed: %v", e.TransactionID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// EntitlementService records purchase entitlements for confirmed payments
type EntitlementService struct {
	receipts *ReceiptService
	webhooks *WebhookNotifier
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(receipts *ReceiptService, webhooks *WebhookNotifier) *EntitlementService {
	return &EntitlementService{receipts: receipts, webhooks: webhooks}
}

// RecordConfirmed finalizes a pending transaction after on-chain
// confirmation: the transaction row moves to confirmed, a purchase
// entitlement referencing it is inserted, and the product download counter
// is incremented atomically. Counter, receipt, and webhook failures are
// logged and swallowed; a purchase insert failure is surfaced as a
// PartialFailureError without rolling back the confirmed transaction.
func (s *EntitlementService) RecordConfirmed(tx *models.CryptoTransaction, transactionHash string, buyerEmail string) (*models.UserPurchase, error) {
	rows, err := database.ConfirmTransaction(tx.ID, transactionHash, "algo_"+transactionHash, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to confirm transaction: %w", err)
	}
	if rows == 0 {
		return nil, ErrTransactionFinal
	}
	tx.Status = models.TxStatusConfirmed
	tx.TransactionHash = transactionHash

	purchase := &models.UserPurchase{
		UserID:        tx.UserID,
		ProductID:     tx.ProductID,
		TransactionID: &tx.ID,
		PurchaseType:  models.PurchaseTypeCrypto,
		AmountPaid:    tx.Amount,
	}
	if err := database.CreatePurchase(purchase); err != nil {
		logging.Errorf("Entitlement write failed after confirmed payment - transaction: %s, error: %v", tx.ID, err)
		return nil, &PartialFailureError{TransactionID: tx.ID, Err: err}
	}

	if err := database.IncrementDownloadCount(tx.ProductID); err != nil {
		// Non-critical: the payment already succeeded
		logging.Warnf("Failed to update download count - product: %s, error: %v", tx.ProductID, err)
	}

	s.notify(tx, buyerEmail)

	return purchase, nil
}

// EnsureFreeEntitlement records the entitlement for a free product on the
// buyer's first acquisition. Later calls find the existing row and do
// nothing, so the download counter moves once per buyer.
func (s *EntitlementService) EnsureFreeEntitlement(userID string, product *models.Product) (*models.UserPurchase, error) {
	existing, err := database.GetPurchasesByUserAndProduct(userID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing entitlements: %w", err)
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}
	return s.GrantFree(userID, product)
}

// GrantFree records a direct entitlement for a free product. No transaction
// reference is attached; its absence is what marks the direct/free path.
func (s *EntitlementService) GrantFree(userID string, product *models.Product) (*models.UserPurchase, error) {
	if !product.IsFree() {
		return nil, fmt.Errorf("product %s is not free", product.ID)
	}
	purchase := &models.UserPurchase{
		UserID:       userID,
		ProductID:    product.ID,
		PurchaseType: models.PurchaseTypeFree,
		AmountPaid:   decimal.Zero,
	}
	if err := database.CreatePurchase(purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase record: %w", err)
	}
	if err := database.IncrementDownloadCount(product.ID); err != nil {
		logging.Warnf("Failed to update download count - product: %s, error: %v", product.ID, err)
	}
	return purchase, nil
}

// notify sends the purchase receipt and the store webhook. Both are
// best-effort and run off the request path.
func (s *EntitlementService) notify(tx *models.CryptoTransaction, buyerEmail string) {
	product, err := database.GetProductByID(tx.ProductID)
	if err != nil {
		logging.Warnf("Failed to load product for purchase notifications - product: %s, error: %v", tx.ProductID, err)
		return
	}

	if s.receipts != nil && buyerEmail != "" {
		go func() {
			if err := s.receipts.SendPurchaseReceipt(buyerEmail, product.Name, tx.Amount, tx.TransactionHash); err != nil {
				logging.Warnf("Failed to send purchase receipt - transaction: %s, error: %v", tx.ID, err)
			}
		}()
	}

	if s.webhooks != nil {
		if store, err := database.GetStoreByUserID(product.UserID); err == nil {
			go s.webhooks.NotifySale(store, product, tx)
		}
	}
}
