package services

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/database"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role, status models.UserStatus) *models.User {
	user := &models.User{
		Email:    email,
		Name:     "User " + email,
		Role:     role,
		Status:   status,
		IsActive: status == models.UserStatusApproved,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProvider(t *testing.T, db *gorm.DB, email string, status models.UserStatus) (*models.User, *models.ProviderProfile) {
	user := createUser(t, db, email, models.RoleProvider, status)
	profile := &models.ProviderProfile{UserID: user.ID, RestaurantName: "Kitchen " + email}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func createMeal(t *testing.T, db *gorm.DB, profile *models.ProviderProfile, name, category string, price float64) *models.Meal {
	cat, err := connectOrCreateCategory(db, category)
	require.NoError(t, err)
	meal := &models.Meal{Name: name, Price: price, ProviderID: profile.ID, CategoryID: cat.ID}
	require.NoError(t, db.Create(meal).Error)
	return meal
}

func currentUser(user *models.User, profile *models.ProviderProfile) *models.CurrentUser {
	current := &models.CurrentUser{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Status: user.Status,
	}
	if profile != nil {
		current.ProviderProfileID = profile.ID
	}
	return current
}

// stepClock returns increasing timestamps so newest-first ordering is deterministic
func stepClock(t *testing.T, db *gorm.DB) {
	base := time.Now().Add(-time.Hour)
	db.Config.NowFunc = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
}
