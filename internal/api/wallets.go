package api

import (
	"errors"
	"net/http"

	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/response"
	"github.com/Fatumayattani/lumi-hub/internal/services"

	"github.com/gin-gonic/gin"
)

// ListWalletProviders returns the wallet provider registry
func ListWalletProviders(c *gin.Context) {
	response.SuccessJSON(c, walletService.Providers())
}

// ConnectWalletRequest represents a wallet connect request
type ConnectWalletRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
	Mobile     bool   `json:"mobile"`
}

// ConnectWallet opens a wallet session. When the provider is not
// installed, the response carries the install path: on mobile the app
// deep link is tried first, falling back to the download page after a
// fixed delay; desktop goes straight to the download page.
func ConnectWallet(c *gin.Context) {
	var req ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	session, err := walletService.Connect(middleware.UserID(c), req.ProviderID)
	if err != nil {
		var notInstalled *services.WalletNotInstalledError
		if errors.As(err, &notInstalled) {
			payload := gin.H{
				"error":        notInstalled.Error(),
				"download_url": notInstalled.Provider.DownloadURL,
			}
			if req.Mobile {
				payload["deep_link"] = notInstalled.Provider.MobileDeepLink
				payload["fallback_after_ms"] = services.DeepLinkFallbackDelay.Milliseconds()
			}
			c.JSON(http.StatusConflict, payload)
			return
		}
		if errors.Is(err, services.ErrUnknownProvider) {
			response.ErrorJSON(c, http.StatusNotFound, "Wallet provider not found")
			return
		}
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to connect wallet. Please make sure your wallet is installed and try again.")
		return
	}

	response.SuccessJSON(c, session)
}

// SetWalletAccountRequest represents the active account reported by the wallet
type SetWalletAccountRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Address   string `json:"address" binding:"required"`
}

// SetWalletAccount records the active account address for a session
func SetWalletAccount(c *gin.Context) {
	var req SetWalletAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	session, ok := walletService.Get(req.SessionID)
	if !ok || session.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusNotFound, "Wallet session not found")
		return
	}

	if err := walletService.SetAccount(req.SessionID, req.Address); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	response.SuccessJSON(c, session)
}

// DisconnectWallet tears down all of the caller's wallet sessions
func DisconnectWallet(c *gin.Context) {
	removed := walletService.Disconnect(middleware.UserID(c))
	response.SuccessJSON(c, gin.H{"disconnected": removed})
}
