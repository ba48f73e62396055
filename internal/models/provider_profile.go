package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProviderProfile is the restaurant attached to a PROVIDER user
type ProviderProfile struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	RestaurantName string    `gorm:"not null" json:"restaurantName"`
	Description    *string   `json:"description,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	ImageURL       *string   `gorm:"column:image_url" json:"imageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	User  *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Meals []Meal `gorm:"foreignKey:ProviderID" json:"meals,omitempty"`
}

func (p *ProviderProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PlaceholderRestaurantName is used when a provider signs up without naming the restaurant
func PlaceholderRestaurantName(ownerName string) string {
	return ownerName + "'s Kitchen"
}

const PlaceholderDescription = "Welcome to our kitchen!"
