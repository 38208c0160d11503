package database

import (
	"github.com/Fatumayattani/lumi-hub/internal/models"

	"gorm.io/gorm"
)

// CreateProduct inserts a new product
func CreateProduct(product *models.Product) error {
	return DB.Create(product).Error
}

// GetProductByID gets a product by ID
func GetProductByID(id string) (*models.Product, error) {
	var product models.Product
	if err := DB.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetPublishedProducts lists published products for the marketplace,
// optionally filtered by a search term and category
func GetPublishedProducts(search, category string) ([]models.Product, error) {
	var products []models.Product
	query := DB.Where("is_published = ?", true)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("created_at DESC").Find(&products).Error
	return products, err
}

// GetProductsByOwner lists all products belonging to a creator
func GetProductsByOwner(userID string) ([]models.Product, error) {
	var products []models.Product
	err := DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&products).Error
	return products, err
}

// UpdateProduct saves changes to an existing product
func UpdateProduct(product *models.Product) error {
	return DB.Save(product).Error
}

// SetProductPublished toggles the published flag
func SetProductPublished(id string, published bool) error {
	result := DB.Model(&models.Product{}).Where("id = ?", id).Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProduct soft deletes a product
func DeleteProduct(id string) error {
	result := DB.Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementDownloadCount bumps the product download counter by one.
// The increment happens in the database so concurrent purchases
// cannot under-count.
func IncrementDownloadCount(id string) error {
	return DB.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}
