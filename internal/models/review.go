package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	MealID     string    `gorm:"type:varchar(36);not null;index" json:"mealId"`
	CustomerID string    `gorm:"type:varchar(36);not null;index" json:"customerId"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Customer *User `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
