package services

import (
	"errors"
	"testing"

	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/models"
)

func TestRecordConfirmed(t *testing.T) {
	setupTest(t)
	product := createTestProduct(t, "5.00", true)
	tx := createPendingTransaction(t, product, "buyer-1", "key-1")

	recorder := NewEntitlementService(nil, nil)
	purchase, err := recorder.RecordConfirmed(tx, "ABCDEF", "")
	if err != nil {
		t.Fatalf("record confirmed payment: %v", err)
	}

	stored, err := database.GetTransactionByID(tx.ID)
	if err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if stored.Status != models.TxStatusConfirmed {
		t.Fatalf("expected confirmed status, got %q", stored.Status)
	}
	if stored.TransactionHash != "ABCDEF" {
		t.Fatalf("expected transaction hash ABCDEF, got %q", stored.TransactionHash)
	}
	if stored.GatewayPaymentID != "algo_ABCDEF" {
		t.Fatalf("expected gateway id algo_ABCDEF, got %q", stored.GatewayPaymentID)
	}
	if stored.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	if purchase.TransactionID == nil || *purchase.TransactionID != tx.ID {
		t.Fatal("purchase should reference the confirmed transaction")
	}
	if purchase.PurchaseType != models.PurchaseTypeCrypto {
		t.Fatalf("expected crypto purchase type, got %q", purchase.PurchaseType)
	}
	if !purchase.AmountPaid.Equal(product.Price) {
		t.Fatalf("expected amount paid %s, got %s", product.Price, purchase.AmountPaid)
	}

	updated, err := database.GetProductByID(product.ID)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if updated.DownloadCount != 1 {
		t.Fatalf("expected download count 1, got %d", updated.DownloadCount)
	}
}

func TestRecordConfirmedIsOneDirectional(t *testing.T) {
	setupTest(t)
	product := createTestProduct(t, "5.00", true)
	tx := createPendingTransaction(t, product, "buyer-1", "key-1")

	recorder := NewEntitlementService(nil, nil)
	if _, err := recorder.RecordConfirmed(tx, "HASH1", ""); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}

	_, err := recorder.RecordConfirmed(tx, "HASH2", "")
	if !errors.Is(err, ErrTransactionFinal) {
		t.Fatalf("expected ErrTransactionFinal on second confirmation, got %v", err)
	}

	stored, err := database.GetTransactionByID(tx.ID)
	if err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if stored.TransactionHash != "HASH1" {
		t.Fatalf("terminal row must keep its original hash, got %q", stored.TransactionHash)
	}
}

func TestDownloadCounterAccumulates(t *testing.T) {
	setupTest(t)
	product := createTestProduct(t, "5.00", true)
	if err := database.DB.Model(product).Update("download_count", 3).Error; err != nil {
		t.Fatalf("seed download count: %v", err)
	}

	recorder := NewEntitlementService(nil, nil)
	for i, buyer := range []string{"buyer-1", "buyer-2"} {
		tx := createPendingTransaction(t, product, buyer, "key-"+buyer)
		if _, err := recorder.RecordConfirmed(tx, "HASH", ""); err != nil {
			t.Fatalf("confirmation %d: %v", i, err)
		}
	}

	updated, err := database.GetProductByID(product.ID)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if updated.DownloadCount != 5 {
		t.Fatalf("expected download count 5 after two purchases on 3, got %d", updated.DownloadCount)
	}
}

func TestGrantFree(t *testing.T) {
	setupTest(t)
	product := createTestProduct(t, "0", true)

	recorder := NewEntitlementService(nil, nil)
	purchase, err := recorder.GrantFree("buyer-1", product)
	if err != nil {
		t.Fatalf("grant free product: %v", err)
	}
	if purchase.TransactionID != nil {
		t.Fatal("free grant must not reference a transaction")
	}
	if purchase.PurchaseType != models.PurchaseTypeFree {
		t.Fatalf("expected free purchase type, got %q", purchase.PurchaseType)
	}
	if !purchase.AmountPaid.IsZero() {
		t.Fatalf("expected zero amount paid, got %s", purchase.AmountPaid)
	}
}

func TestEnsureFreeEntitlementRecordsOnce(t *testing.T) {
	setupTest(t)
	product := createTestProduct(t, "0", true)

	recorder := NewEntitlementService(nil, nil)
	first, err := recorder.EnsureFreeEntitlement("buyer-1", product)
	if err != nil {
		t.Fatalf("first acquisition: %v", err)
	}
	second, err := recorder.EnsureFreeEntitlement("buyer-1", product)
	if err != nil {
		t.Fatalf("repeat acquisition: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("repeat acquisition must reuse the entitlement, got %s then %s", first.ID, second.ID)
	}

	purchases, err := database.GetPurchasesByUserAndProduct("buyer-1", product.ID)
	if err != nil {
		t.Fatalf("load purchases: %v", err)
	}
	if len(purchases) != 1 {
		t.Fatalf("expected a single purchase row, got %d", len(purchases))
	}

	updated, err := database.GetProductByID(product.ID)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if updated.DownloadCount != 1 {
		t.Fatalf("counter must move once per buyer, got %d", updated.DownloadCount)
	}
}

func TestGrantFreeRejectsPricedProduct(t *testing.T) {
	setupTest(t)
	product := createTestProduct(t, "5.00", true)

	recorder := NewEntitlementService(nil, nil)
	if _, err := recorder.GrantFree("buyer-1", product); err == nil {
		t.Fatal("expected error for priced product")
	}
}
