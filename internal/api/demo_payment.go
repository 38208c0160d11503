package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/models"
	"github.com/Fatumayattani/lumi-hub/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// demoBTCRate is the simulated USD to BTC conversion rate
var demoBTCRate = decimal.RequireFromString("0.000025")

// CreateDemoPaymentRequest matches the demo checkout payload
type CreateDemoPaymentRequest struct {
	ProductID          string          `json:"productId"`
	Amount             decimal.Decimal `json:"amount"`
	ProductName        string          `json:"productName"`
	ProductDescription string          `json:"productDescription"`
}

// CreateDemoPayment records a simulated confirmed payment without touching
// any chain. It keeps the error contract of the hosted endpoint it
// replaces: bare {"error": ...} bodies with optional details, and a
// {"success": true, ...} body on completion.
func CreateDemoPayment(c *gin.Context) {
	var req CreateDemoPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.ProductID == "" || req.Amount.Sign() <= 0 || req.ProductName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: productId, amount, or productName"})
		return
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := middleware.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization"})
		return
	}

	if redisService != nil {
		limited, err := redisService.CheckDemoPaymentRateLimit(claims.Subject)
		if err != nil {
			logging.Warnf("demo payment rate limit check failed: %v", err)
		} else if limited {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many demo payments, try again later"})
			return
		}
	}

	product, err := database.GetProductByID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "details": err.Error()})
		return
	}

	now := time.Now()
	gatewayID := fmt.Sprintf("demo_%d", now.UnixMilli())
	tx := &models.CryptoTransaction{
		ProductID:        product.ID,
		UserID:           claims.Subject,
		Amount:           req.Amount,
		CryptoAmount:     req.Amount.Mul(demoBTCRate).StringFixed(6),
		Currency:         "BTC",
		Status:           models.TxStatusConfirmed,
		GatewayPaymentID: gatewayID,
		TransactionHash:  demoTransactionHash(),
		IdempotencyKey:   gatewayID,
		CompletedAt:      &now,
	}
	if err := database.CreateTransaction(tx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store transaction", "details": err.Error()})
		return
	}

	purchase := &models.UserPurchase{
		UserID:        claims.Subject,
		ProductID:     product.ID,
		TransactionID: &tx.ID,
		PurchaseType:  models.PurchaseTypeCrypto,
		AmountPaid:    req.Amount,
	}
	if err := database.CreatePurchase(purchase); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create purchase record", "details": err.Error()})
		return
	}

	// Payment already succeeded, so a failed counter bump is only logged
	if err := database.IncrementDownloadCount(product.ID); err != nil {
		logging.Warnf("failed to update download count for product %s: %v", product.ID, err)
	}

	if redisService != nil {
		if err := redisService.SetDemoPaymentRateLimit(claims.Subject, config.AppConfig.DemoRateLimitMinutes); err != nil {
			logging.Warnf("failed to set demo payment rate limit: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"transaction_id": tx.ID,
		"status":         models.TxStatusConfirmed,
		"message":        "Demo payment completed successfully",
	})
}

func demoTransactionHash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("0x%064d", time.Now().UnixNano())
	}
	return "0x" + hex.EncodeToString(buf)
}
