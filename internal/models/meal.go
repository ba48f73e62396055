package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal is a menu item offered by a provider
type Meal struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string    `gorm:"not null;index" json:"name"`
	Description   *string   `json:"description,omitempty"`
	Price         float64   `gorm:"not null;default:0" json:"price"`
	ImageURL      *string   `gorm:"column:image_url" json:"imageUrl,omitempty"`
	ProviderID    string    `gorm:"type:varchar(36);not null;index" json:"providerId"`
	CategoryID    string    `gorm:"type:varchar(36);not null;index" json:"categoryId"`
	AverageRating float64   `gorm:"not null;default:0" json:"averageRating"`
	TotalReviews  int       `gorm:"not null;default:0" json:"totalReviews"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Provider *ProviderProfile `gorm:"constraint:OnDelete:CASCADE" json:"provider,omitempty"`
	Category *Category        `json:"category,omitempty"`
	Reviews  []Review         `json:"reviews,omitempty"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
