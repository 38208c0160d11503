package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/models"

	"github.com/shopspring/decimal"
)

func TestNotifySaleSignsPayload(t *testing.T) {
	setupTest(t)

	type received struct {
		body      []byte
		signature string
		userAgent string
	}
	got := make(chan received, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			body:      body,
			signature: r.Header.Get("X-LumiHub-Signature"),
			userAgent: r.Header.Get("User-Agent"),
		}
	}))
	defer server.Close()

	store := &models.Store{
		UserID:             "creator-1",
		Name:               "Lumi Store",
		WebhookCallbackURL: server.URL,
		WebhookSecret:      "whsec",
	}
	product := &models.Product{
		UserID: "creator-1",
		Name:   "Icon Pack",
		Price:  decimal.RequireFromString("5.00"),
	}
	product.ID = "prod-1"
	tx := &models.CryptoTransaction{
		ProductID:       "prod-1",
		UserID:          "buyer-1",
		Amount:          decimal.RequireFromString("5.00"),
		CryptoAmount:    "0.750000",
		Currency:        "ALGO",
		Status:          models.TxStatusConfirmed,
		TransactionHash: "HASH1",
	}
	tx.ID = "tx-1"

	NewWebhookNotifier().NotifySale(store, product, tx)

	select {
	case r := <-got:
		var payload SalePayload
		if err := json.Unmarshal(r.body, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Event != "purchase.confirmed" {
			t.Fatalf("expected purchase.confirmed event, got %q", payload.Event)
		}
		if payload.TransactionID != "tx-1" || payload.ProductID != "prod-1" {
			t.Fatalf("unexpected identifiers: %+v", payload)
		}
		if payload.Amount != "5.00" || payload.CryptoAmount != "0.750000" || payload.Currency != "ALGO" {
			t.Fatalf("unexpected amounts: %+v", payload)
		}
		if r.userAgent != "LumiHub-Webhook/1.0" {
			t.Fatalf("unexpected user agent %q", r.userAgent)
		}

		mac := hmac.New(sha256.New, []byte("whsec"))
		mac.Write(r.body)
		want := hex.EncodeToString(mac.Sum(nil))
		if r.signature != want {
			t.Fatalf("signature mismatch: got %q want %q", r.signature, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}
}

func TestNotifySaleSkipsWithoutCallback(t *testing.T) {
	setupTest(t)

	store := &models.Store{UserID: "creator-1", Name: "Lumi Store"}
	product := &models.Product{UserID: "creator-1", Name: "Icon Pack"}
	tx := &models.CryptoTransaction{Amount: decimal.Zero}

	// Must return without attempting a request
	NewWebhookNotifier().NotifySale(store, product, tx)
	NewWebhookNotifier().NotifySale(nil, product, tx)
}
