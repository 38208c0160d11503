package database

import (
	"github.com/Fatumayattani/lumi-hub/internal/models"
)

// CreateStore inserts a new store
func CreateStore(store *models.Store) error {
	return DB.Create(store).Error
}

// GetStoreByID gets a store by ID
func GetStoreByID(id string) (*models.Store, error) {
	var store models.Store
	if err := DB.Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// GetStoreByUserID gets the store owned by a user
func GetStoreByUserID(userID string) (*models.Store, error) {
	var store models.Store
	if err := DB.Where("user_id = ?", userID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// UpdateStore saves changes to an existing store
func UpdateStore(store *models.Store) error {
	return DB.Save(store).Error
}
