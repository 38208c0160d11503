package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/response"
	"github.com/Fatumayattani/lumi-hub/internal/services"

	"github.com/gin-gonic/gin"
)

// GetDownload verifies the caller's entitlement and returns a time-limited
// signed URL for the product file. A free product's first download records
// the reference-less entitlement so it shows up with the buyer's purchases.
func GetDownload(c *gin.Context) {
	product, err := database.GetProductByID(c.Param("productID"))
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Product not found")
		return
	}

	if product.IsFree() {
		if _, err := entitlementService.EnsureFreeEntitlement(middleware.UserID(c), product); err != nil {
			response.ErrorJSON(c, http.StatusInternalServerError, "Failed to record acquisition")
			return
		}
	}

	url, err := downloadService.IssueDownload(middleware.UserID(c), product)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotPurchased):
			response.ErrorJSON(c, http.StatusForbidden, "Product not purchased")
		case errors.Is(err, services.ErrPaymentPending):
			response.ErrorJSON(c, http.StatusForbidden, "Payment is still pending confirmation")
		case errors.Is(err, services.ErrDownloadUnavailable):
			response.ErrorJSON(c, http.StatusNotFound, "No downloadable file for this product")
		default:
			response.ErrorJSON(c, http.StatusInternalServerError, "Failed to generate download link")
		}
		return
	}

	response.SuccessJSON(c, gin.H{
		"download_url": url,
		"expires_in":   config.AppConfig.DownloadTTL,
		"expires_at":   time.Now().Add(time.Duration(config.AppConfig.DownloadTTL) * time.Second).UTC(),
	})
}
