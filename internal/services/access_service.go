package services

import (
	"fmt"

	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/models"
)

// Access denial reasons
var (
	ErrNotPurchased   = fmt.Errorf("product not purchased")
	ErrPaymentPending = fmt.Errorf("payment is still pending or failed")
)

// AccessService decides whether a buyer may download a product
type AccessService struct{}

// NewAccessService creates a new access service
func NewAccessService() *AccessService {
	return &AccessService{}
}

// VerifyAccess grants download access when the product is free, or when the
// buyer holds an entitlement that is either reference-less (direct/free
// grant) or linked to a confirmed transaction. Entitlements whose linked
// transactions never confirmed deny access with a pending/failed reason.
func (s *AccessService) VerifyAccess(userID string, product *models.Product) error {
	if product.IsFree() {
		return nil
	}

	purchases, err := database.GetPurchasesByUserAndProduct(userID, product.ID)
	if err != nil {
		return fmt.Errorf("failed to verify purchase: %w", err)
	}
	if len(purchases) == 0 {
		return ErrNotPurchased
	}

	for _, purchase := range purchases {
		if purchase.TransactionID == nil {
			// Direct purchase without a payment reference
			return nil
		}
		tx, err := database.GetTransactionByID(*purchase.TransactionID)
		if err != nil {
			continue
		}
		if tx.Status == models.TxStatusConfirmed {
			return nil
		}
	}

	return ErrPaymentPending
}
