package services

import (
	"errors"
	"math"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProfileInput is the payload for creating or updating the requester's provider profile
type ProfileInput struct {
	RestaurantName *string `json:"restaurantName"`
	Description    *string `json:"description"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	ImageURL       *string `json:"imageUrl"`
}

// ProviderDetails is a provider with its menu and aggregate rating
type ProviderDetails struct {
	*models.ProviderProfile
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

type ProviderService interface {
	// ListProviders returns approved providers
	ListProviders() ([]models.ProviderProfile, error)
	// GetProvider looks a provider up by profile id or owning user id
	GetProvider(id string) (*ProviderDetails, error)
	// UpsertProfile creates or updates the profile owned by userID
	UpsertProfile(userID string, input ProfileInput) (*models.ProviderProfile, error)
}

type providerService struct {
	db *gorm.DB
}

func NewProviderService(db *gorm.DB) ProviderService {
	return &providerService{db: db}
}

func (s *providerService) approved() *gorm.DB {
	return s.db.Model(&models.ProviderProfile{}).
		Joins("JOIN users ON users.id = provider_profiles.user_id").
		Where("users.status = ?", models.UserStatusApproved)
}

func (s *providerService) ListProviders() ([]models.ProviderProfile, error) {
	var profiles []models.ProviderProfile
	err := s.approved().
		Preload("User", selectPublicUser).
		Order("provider_profiles.created_at desc").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError("failed to list providers", err)
	}
	return profiles, nil
}

func (s *providerService) GetProvider(id string) (*ProviderDetails, error) {
	var profile models.ProviderProfile
	err := s.approved().
		Where("provider_profiles.id = ? OR provider_profiles.user_id = ?", id, id).
		Preload("User", selectPublicUser).
		Preload("Meals", func(db *gorm.DB) *gorm.DB {
			return db.Order("meals.created_at desc")
		}).
		Preload("Meals.Category").
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Provider not found")
		}
		return nil, models.NewInternalError("failed to load provider", err)
	}

	var aggregate struct {
		Average float64
		Total   int64
	}
	err = s.db.Model(&models.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0) AS average, COUNT(reviews.id) AS total").
		Joins("JOIN meals ON meals.id = reviews.meal_id").
		Where("meals.provider_id = ?", profile.ID).
		Scan(&aggregate).Error
	if err != nil {
		return nil, models.NewInternalError("failed to aggregate provider rating", err)
	}

	average := 0.0
	if !math.IsNaN(aggregate.Average) {
		average = decimal.NewFromFloat(aggregate.Average).Round(1).InexactFloat64()
	}
	return &ProviderDetails{
		ProviderProfile: &profile,
		AverageRating:   average,
		TotalReviews:    aggregate.Total,
	}, nil
}

func (s *providerService) UpsertProfile(userID string, input ProfileInput) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if input.RestaurantName == nil || strings.TrimSpace(*input.RestaurantName) == "" {
			return nil, models.NewValidationError("Restaurant name is required")
		}
		profile = models.ProviderProfile{
			UserID:         userID,
			RestaurantName: strings.TrimSpace(*input.RestaurantName),
			Description:    input.Description,
			Address:        input.Address,
			Phone:          input.Phone,
			ImageURL:       normalizeImagePath(input.ImageURL),
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, models.NewInternalError("failed to create provider profile", err)
		}
		return &profile, nil
	}
	if err != nil {
		return nil, models.NewInternalError("failed to load provider profile", err)
	}

	updates := map[string]interface{}{}
	if input.RestaurantName != nil {
		name := strings.TrimSpace(*input.RestaurantName)
		if name == "" {
			return nil, models.NewValidationError("Restaurant name cannot be empty")
		}
		updates["restaurant_name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.ImageURL != nil {
		updates["image_url"] = *normalizeImagePath(input.ImageURL)
	}
	if len(updates) > 0 {
		if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
			return nil, models.NewInternalError("failed to update provider profile", err)
		}
		if err := s.db.Where("id = ?", profile.ID).First(&profile).Error; err != nil {
			return nil, models.NewInternalError("failed to reload provider profile", err)
		}
	}
	return &profile, nil
}
