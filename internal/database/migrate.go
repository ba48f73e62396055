package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Account{},
		&models.ProviderProfile{},
		&models.Category{},
		&models.Meal{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Review{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	}
}

// AutoMigrate creates or updates the schema for all models
func AutoMigrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}
