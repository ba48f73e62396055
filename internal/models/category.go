package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "ACTIVE"
	CategoryStatusApproved CategoryStatus = "APPROVED"
)

// IsValid reports whether s is a known category status
func (s CategoryStatus) IsValid() bool {
	return s == CategoryStatusActive || s == CategoryStatusApproved
}

type Category struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Status    CategoryStatus `gorm:"type:varchar(16);not null;default:ACTIVE" json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Meals []Meal `gorm:"constraint:OnDelete:RESTRICT" json:"meals,omitempty"`

	// MealCount is filled by listing queries only
	MealCount int64 `gorm:"->;-:migration" json:"mealCount"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
