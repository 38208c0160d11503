package models

// Store represents a creator storefront
type Store struct {
	BaseModel

	UserID      string `json:"user_id" gorm:"not null;uniqueIndex"` // owner, one store per user
	Name        string `json:"name" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"type:text"`
	LogoURL     string `json:"logo_url" gorm:"type:varchar(500)"`

	// Optional callback notified on each confirmed sale
	WebhookCallbackURL string `json:"webhook_callback_url" gorm:"type:varchar(500)"`
	WebhookSecret      string `json:"webhook_secret" gorm:"type:varchar(255)"`
}

// TableName specifies the table name
func (Store) TableName() string {
	return "stores"
}
