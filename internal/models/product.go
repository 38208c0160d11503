package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product represents a digital product listed in a store
type Product struct {
	BaseModel

	UserID      string          `json:"user_id" gorm:"not null;index"` // owner
	Name        string          `json:"name" gorm:"not null;size:200"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"` // USD, zero means free

	ImageURL string `json:"image_url" gorm:"type:varchar(500)"` // public preview image
	FileURL  string `json:"file_url" gorm:"type:varchar(500)"`  // stored file, private bucket

	Category string `json:"category" gorm:"size:100;index"`
	Tags     string `json:"tags" gorm:"type:text"` // comma separated

	IsPublished   bool `json:"is_published" gorm:"default:false;index"`
	DownloadCount int  `json:"download_count" gorm:"default:0"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsFree reports whether the product can be downloaded without a purchase
func (p *Product) IsFree() bool {
	return p.Price.Sign() == 0
}

// TagList splits the stored tag string into individual tags
func (p *Product) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
