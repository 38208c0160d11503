package database

import (
	"github.com/Fatumayattani/lumi-hub/internal/models"
)

// CreatePurchase inserts a new purchase entitlement
func CreatePurchase(purchase *models.UserPurchase) error {
	return DB.Create(purchase).Error
}

// GetPurchasesByUserAndProduct lists all entitlements a buyer holds for a product
func GetPurchasesByUserAndProduct(userID, productID string) ([]models.UserPurchase, error) {
	var purchases []models.UserPurchase
	err := DB.Where("user_id = ? AND product_id = ?", userID, productID).Find(&purchases).Error
	return purchases, err
}

// GetPurchasesByUser lists a buyer's purchases, newest first
func GetPurchasesByUser(userID string) ([]models.UserPurchase, error) {
	var purchases []models.UserPurchase
	err := DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

// CountPurchasesByProduct counts entitlements for a product (sales total)
func CountPurchasesByProduct(productID string) (int64, error) {
	var count int64
	err := DB.Model(&models.UserPurchase{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
