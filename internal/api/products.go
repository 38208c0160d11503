package api

import (
	"errors"
	"net/http"

	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/models"
	"github.com/Fatumayattani/lumi-hub/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListProducts lists published products for the marketplace
func ListProducts(c *gin.Context) {
	products, err := database.GetPublishedProducts(c.Query("q"), c.Query("category"))
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to load products")
		return
	}
	response.SuccessJSON(c, products)
}

// GetProduct returns a single product
func GetProduct(c *gin.Context) {
	product, err := database.GetProductByID(c.Param("id"))
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Product not found")
		return
	}
	response.SuccessJSON(c, product)
}

// CreateProductRequest represents a create product request
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	FileURL     string          `json:"file_url" binding:"required"`
	Category    string          `json:"category"`
	Tags        string          `json:"tags"` // comma separated
	IsPublished bool            `json:"is_published"`
}

// CreateProduct creates a new product owned by the caller
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.Price.Sign() < 0 {
		response.ErrorJSON(c, http.StatusBadRequest, "Price must not be negative")
		return
	}

	product := &models.Product{
		UserID:      middleware.UserID(c),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		FileURL:     req.FileURL,
		Category:    req.Category,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	}
	if err := database.CreateProduct(product); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to create product")
		return
	}
	response.SuccessJSON(c, product)
}

// ListMyProducts lists the caller's products, published or not
func ListMyProducts(c *gin.Context) {
	products, err := database.GetProductsByOwner(middleware.UserID(c))
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to load products")
		return
	}
	response.SuccessJSON(c, products)
}

// ownedProduct loads a product and checks the caller owns it
func ownedProduct(c *gin.Context) (*models.Product, bool) {
	product, err := database.GetProductByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Product not found")
		} else {
			response.ErrorJSON(c, http.StatusInternalServerError, "Failed to load product")
		}
		return nil, false
	}
	if product.UserID != middleware.UserID(c) {
		response.ErrorJSON(c, http.StatusForbidden, "You do not own this product")
		return nil, false
	}
	return product, true
}

// UpdateProductRequest represents an update product request
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	FileURL     *string          `json:"file_url"`
	Category    *string          `json:"category"`
	Tags        *string          `json:"tags"`
}

// UpdateProduct updates fields of a product owned by the caller
func UpdateProduct(c *gin.Context) {
	product, ok := ownedProduct(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.Price != nil && req.Price.Sign() < 0 {
		response.ErrorJSON(c, http.StatusBadRequest, "Price must not be negative")
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.FileURL != nil {
		product.FileURL = *req.FileURL
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Tags != nil {
		product.Tags = *req.Tags
	}

	if err := database.UpdateProduct(product); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to update product")
		return
	}
	response.SuccessJSON(c, product)
}

// ToggleProductPublished flips the published flag
func ToggleProductPublished(c *gin.Context) {
	product, ok := ownedProduct(c)
	if !ok {
		return
	}

	if err := database.SetProductPublished(product.ID, !product.IsPublished); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to update product")
		return
	}
	product.IsPublished = !product.IsPublished
	response.SuccessJSON(c, product)
}

// DeleteProduct soft deletes a product owned by the caller
func DeleteProduct(c *gin.Context) {
	product, ok := ownedProduct(c)
	if !ok {
		return
	}

	if err := database.DeleteProduct(product.ID); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	response.SuccessJSON(c, gin.H{"deleted": product.ID})
}
