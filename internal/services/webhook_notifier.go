package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/models"
	"github.com/Fatumayattani/lumi-hub/pkg/logging"
)

// WebhookNotifier notifies a store's configured callback of confirmed sales
type WebhookNotifier struct {
	httpClient *http.Client
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SalePayload represents the payload sent to the store's callback URL
type SalePayload struct {
	Event           string `json:"event"` // "purchase.confirmed"
	TransactionID   string `json:"transaction_id"`
	TransactionHash string `json:"transaction_hash"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	BuyerID         string `json:"buyer_id"`
	Amount          string `json:"amount"`
	CryptoAmount    string `json:"crypto_amount"`
	Currency        string `json:"currency"`
	Timestamp       string `json:"timestamp"` // ISO 8601 format
}

// NotifySale sends a sale notification to the store's webhook.
// Called in a goroutine so the purchase path never blocks on it.
func (wn *WebhookNotifier) NotifySale(store *models.Store, product *models.Product, tx *models.CryptoTransaction) {
	if store == nil || store.WebhookCallbackURL == "" {
		// No webhook configured, skip
		return
	}

	payload := SalePayload{
		Event:           "purchase.confirmed",
		TransactionID:   tx.ID,
		TransactionHash: tx.TransactionHash,
		ProductID:       product.ID,
		ProductName:     product.Name,
		BuyerID:         tx.UserID,
		Amount:          tx.Amount.StringFixed(2),
		CryptoAmount:    tx.CryptoAmount,
		Currency:        tx.Currency,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	wn.sendWithRetry(store.WebhookCallbackURL, store.WebhookSecret, payload)
}

// sendWithRetry sends the webhook with a bounded retry schedule:
// 1s, 5s, 30s (3 attempts total)
func (wn *WebhookNotifier) sendWithRetry(callbackURL, secret string, payload SalePayload) {
	retryDelays := []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}
	maxRetries := len(retryDelays)

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := wn.sendWebhook(callbackURL, secret, payload)
		if err == nil {
			logging.Infof("Sale webhook sent - url: %s, transaction: %s, attempt: %d",
				callbackURL, payload.TransactionID, attempt+1)
			return
		}

		logging.Errorf("Sale webhook failed - url: %s, transaction: %s, attempt: %d, error: %v",
			callbackURL, payload.TransactionID, attempt+1, err)

		if attempt < maxRetries-1 {
			time.Sleep(retryDelays[attempt])
		}
	}

	logging.Errorf("Sale webhook failed after %d attempts - url: %s, transaction: %s",
		maxRetries, callbackURL, payload.TransactionID)
}

// sendWebhook sends a single webhook request
func (wn *WebhookNotifier) sendWebhook(callbackURL, secret string, payload SalePayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", callbackURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LumiHub-Webhook/1.0")

	if secret != "" {
		signature := wn.generateSignature(jsonData, secret)
		req.Header.Set("X-LumiHub-Signature", signature)
	}

	resp, err := wn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// generateSignature generates HMAC-SHA256 signature for the webhook payload
func (wn *WebhookNotifier) generateSignature(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
