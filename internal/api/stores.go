package api

import (
	"errors"
	"net/http"

	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/models"
	"github.com/Fatumayattani/lumi-hub/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMyStore returns the caller's store
func GetMyStore(c *gin.Context) {
	store, err := database.GetStoreByUserID(middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Store not found")
		} else {
			response.ErrorJSON(c, http.StatusInternalServerError, "Failed to load store")
		}
		return
	}
	response.SuccessJSON(c, store)
}

// StoreRequest represents a create or update store request
type StoreRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	LogoURL            string `json:"logo_url"`
	WebhookCallbackURL string `json:"webhook_callback_url"`
	WebhookSecret      string `json:"webhook_secret"`
}

// CreateStore creates the caller's store
func CreateStore(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if _, err := database.GetStoreByUserID(middleware.UserID(c)); err == nil {
		response.ErrorJSON(c, http.StatusConflict, "Store already exists")
		return
	}

	store := &models.Store{
		UserID:             middleware.UserID(c),
		Name:               req.Name,
		Description:        req.Description,
		LogoURL:            req.LogoURL,
		WebhookCallbackURL: req.WebhookCallbackURL,
		WebhookSecret:      req.WebhookSecret,
	}
	if err := database.CreateStore(store); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to create store")
		return
	}
	response.SuccessJSON(c, store)
}

// UpdateStore updates the caller's store
func UpdateStore(c *gin.Context) {
	store, err := database.GetStoreByID(c.Param("id"))
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Store not found")
		return
	}
	if store.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusForbidden, "You do not own this store")
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	store.Name = req.Name
	store.Description = req.Description
	store.LogoURL = req.LogoURL
	store.WebhookCallbackURL = req.WebhookCallbackURL
	store.WebhookSecret = req.WebhookSecret

	if err := database.UpdateStore(store); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to update store")
		return
	}
	response.SuccessJSON(c, store)
}
