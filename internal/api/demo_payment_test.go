package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func setupHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{
		BaseURL:          "http://localhost:8080",
		AuthJWTSecret:    "test-auth-secret",
		StorageRoot:      t.TempDir(),
		StorageURLSecret: "test-url-secret",
		DownloadTTL:      3600,
		AlgoRate:         decimal.RequireFromString("0.15"),
		ConfirmRounds:    4,
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
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db

	// No Redis in handler tests: the demo endpoint skips rate limiting
	// when the service is absent
	redisService = nil

	r := gin.New()
	r.POST("/api/payments/demo", CreateDemoPayment)
	return r
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.AppConfig.AuthJWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func TestCreateDemoPayment(t *testing.T) {
	r := setupHandlerTest(t)

	product := &models.Product{
		UserID:      "creator-1",
		Name:        "Icon Pack",
		Price:       decimal.RequireFromString("10.00"),
		IsPublished: true,
	}
	if err := database.CreateProduct(product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"productId":   product.ID,
		"amount":      10.00,
		"productName": "Icon Pack",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/payments/demo", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "buyer-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success       bool   `json:"success"`
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != models.TxStatusConfirmed {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}

	tx, err := database.GetTransactionByID(resp.TransactionID)
	if err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx.Currency != "BTC" {
		t.Fatalf("expected simulated BTC currency, got %q", tx.Currency)
	}
	if tx.CryptoAmount != "0.000250" {
		t.Fatalf("expected crypto amount 0.000250 for $10, got %q", tx.CryptoAmount)
	}
	if !strings.HasPrefix(tx.GatewayPaymentID, "demo_") {
		t.Fatalf("expected demo_ gateway id, got %q", tx.GatewayPaymentID)
	}
	if !strings.HasPrefix(tx.TransactionHash, "0x") || len(tx.TransactionHash) != 66 {
		t.Fatalf("expected 0x-prefixed 64-hex hash, got %q", tx.TransactionHash)
	}
	if tx.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	purchases, err := database.GetPurchasesByUserAndProduct("buyer-1", product.ID)
	if err != nil {
		t.Fatalf("load purchases: %v", err)
	}
	if len(purchases) != 1 {
		t.Fatalf("expected one purchase record, got %d", len(purchases))
	}

	updated, err := database.GetProductByID(product.ID)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if updated.DownloadCount != 1 {
		t.Fatalf("expected download count 1, got %d", updated.DownloadCount)
	}
}

func TestCreateDemoPaymentValidation(t *testing.T) {
	r := setupHandlerTest(t)

	// Missing fields
	req := httptest.NewRequest(http.MethodPost, "/api/payments/demo", strings.NewReader(`{"amount": 10}`))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "buyer-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", w.Code)
	}

	// Missing authorization
	body := `{"productId": "p1", "amount": 10, "productName": "Icon Pack"}`
	req = httptest.NewRequest(http.MethodPost, "/api/payments/demo", strings.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without authorization, got %d", w.Code)
	}

	// Bad token
	req = httptest.NewRequest(http.MethodPost, "/api/payments/demo", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer bogus")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", w.Code)
	}

	// Unknown product
	req = httptest.NewRequest(http.MethodPost, "/api/payments/demo", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "buyer-1"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", w.Code)
	}
}
