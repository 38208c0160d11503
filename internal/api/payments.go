package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/response"
	"github.com/Fatumayattani/lumi-hub/internal/services"

	"github.com/gin-gonic/gin"
)

// InitiatePaymentRequest starts a purchase attempt
type InitiatePaymentRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	SessionID      string `json:"session_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
}

// InitiatePayment creates the pending transaction for a purchase attempt
// and returns the unsigned payment instruction for the wallet to sign
func InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	session, ok := walletService.Get(req.SessionID)
	if !ok || session.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusBadRequest, "Please connect your wallet first")
		return
	}

	product, err := database.GetProductByID(req.ProductID)
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Product not found")
		return
	}

	tx, unsigned, err := paymentService.Initiate(c.Request.Context(), middleware.UserID(c), session.Address(), product, req.IdempotencyKey)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	micro, _ := paymentService.CryptoAmount(product.Price)
	response.SuccessJSON(c, gin.H{
		"transaction":      tx,
		"unsigned_txn":     base64.StdEncoding.EncodeToString(unsigned),
		"merchant_address": config.AppConfig.MerchantAddress,
		"micro_algos":      micro,
		"algo_amount":      tx.CryptoAmount,
	})
}

// SubmitPaymentRequest carries the wallet-signed transaction bytes
type SubmitPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	SignedTxn string `json:"signed_txn" binding:"required"`
}

// SubmitPayment submits the signed payment, waits for on-chain
// confirmation, and records the entitlement. The signed bytes are
// checked against the session's account, the merchant, and the
// initiated amount before anything is sent.
func SubmitPayment(c *gin.Context) {
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	session, ok := walletService.Get(req.SessionID)
	if !ok || session.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusBadRequest, "Please connect your wallet first")
		return
	}

	tx, err := database.GetTransactionByID(c.Param("id"))
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Transaction not found")
		return
	}
	if tx.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusForbidden, "Transaction belongs to another user")
		return
	}

	signed, err := base64.StdEncoding.DecodeString(req.SignedTxn)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Signed transaction is not valid base64")
		return
	}

	confirmed, err := paymentService.Submit(c.Request.Context(), tx, session.Address(), signed, c.GetString("email"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.SuccessJSON(c, confirmed)
}

// PurchaseRequest runs the full purchase sequence against a session that
// can sign server-side (dev provider)
type PurchaseRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	SessionID      string `json:"session_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
}

// PurchaseWithSession signs and submits the payment in one call using the
// session's signing key
func PurchaseWithSession(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	session, ok := walletService.Get(req.SessionID)
	if !ok || session.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusBadRequest, "Please connect your wallet first")
		return
	}

	product, err := database.GetProductByID(req.ProductID)
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Product not found")
		return
	}

	tx, err := paymentService.Purchase(c.Request.Context(), session, middleware.UserID(c), c.GetString("email"), product, req.IdempotencyKey)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.SuccessJSON(c, tx)
}

// respondPaymentError maps typed payment errors onto HTTP statuses
func respondPaymentError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNoWalletConnected),
		errors.Is(err, services.ErrProductNotPurchasable),
		errors.Is(err, services.ErrPaymentMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrSignatureRejected),
		errors.Is(err, services.ErrSubmissionRejected):
		status = http.StatusBadGateway
	case errors.Is(err, services.ErrConfirmationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, services.ErrDuplicateSubmission),
		errors.Is(err, services.ErrIdempotencyKeyInUse),
		errors.Is(err, services.ErrTransactionFinal):
		status = http.StatusConflict
	}
	response.ErrorJSON(c, status, err.Error())
}

// ListPurchases returns the caller's purchases with their products
func ListPurchases(c *gin.Context) {
	purchases, err := database.GetPurchasesByUser(middleware.UserID(c))
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to load purchases")
		return
	}

	items := make([]gin.H, 0, len(purchases))
	for _, purchase := range purchases {
		item := gin.H{"purchase": purchase}
		if product, err := database.GetProductByID(purchase.ProductID); err == nil {
			item["product"] = product
		}
		items = append(items, item)
	}
	response.SuccessJSON(c, items)
}
