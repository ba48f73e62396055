package services

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MealInput is the payload for creating a meal. Price accepts numbers or numeric strings.
type MealInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       any     `json:"price"`
	ImageURL    *string `json:"imageUrl"`
	Category    string  `json:"category"`
}

// MealPatch is a partial meal update; nil fields are left unchanged
type MealPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       any     `json:"price"`
	ImageURL    *string `json:"imageUrl"`
	Category    *string `json:"category"`
}

// MealFilters narrows the public meal listing. Empty values are ignored.
type MealFilters struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
}

// MealService provides methods to manage the meal catalog
type MealService interface {
	// CreateMeal adds a meal to the menu of an approved provider
	CreateMeal(providerProfileID string, input MealInput) (*models.Meal, error)
	// ListMeals returns meals of approved providers matching the filters, newest first
	ListMeals(filters MealFilters) ([]models.Meal, error)
	// GetMealDetails returns a meal with its provider, category and reviews
	GetMealDetails(id string) (*models.Meal, error)
	// UpdateMeal applies a partial update to a meal owned by the requester
	UpdateMeal(requester *models.CurrentUser, id string, patch MealPatch) (*models.Meal, error)
	// DeleteMeal removes a meal owned by the requester together with its reviews
	DeleteMeal(requester *models.CurrentUser, id string) error
}

type mealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) MealService {
	return &mealService{db: db}
}

// normalizeImagePath turns OS specific separators into forward slashes
func normalizeImagePath(path *string) *string {
	if path == nil {
		return nil
	}
	normalized := strings.ReplaceAll(strings.TrimSpace(*path), "\\", "/")
	return &normalized
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// requireApprovedProvider loads a provider profile and checks the owning user is APPROVED
func requireApprovedProvider(tx *gorm.DB, providerProfileID string) (*models.ProviderProfile, error) {
	if providerProfileID == "" {
		return nil, models.NewForbiddenError("Access Denied: Provider profile not found.")
	}
	var profile models.ProviderProfile
	if err := tx.Preload("User").Where("id = ?", providerProfileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewForbiddenError("Access Denied: Provider profile not found.")
		}
		return nil, models.NewInternalError("failed to load provider profile", err)
	}
	if profile.User == nil || profile.User.Status != models.UserStatusApproved {
		return nil, models.NewForbiddenError("Access Denied: Your account is not approved by admin.")
	}
	return &profile, nil
}

func (s *mealService) CreateMeal(providerProfileID string, input MealInput) (*models.Meal, error) {
	if _, err := requireApprovedProvider(s.db, providerProfileID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	categoryName := strings.TrimSpace(input.Category)
	if name == "" || categoryName == "" {
		return nil, models.NewValidationError("Missing required fields: name or category")
	}

	meal := &models.Meal{
		Name:        name,
		Description: input.Description,
		Price:       CoercePrice(input.Price),
		ImageURL:    normalizeImagePath(input.ImageURL),
		ProviderID:  providerProfileID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		category, err := connectOrCreateCategory(tx, categoryName)
		if err != nil {
			return err
		}
		meal.CategoryID = category.ID
		return tx.Create(meal).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A category with a similar name already exists")
		}
		return nil, models.NewInternalError("failed to create meal", err)
	}

	log.WithFields(logrus.Fields{
		"meal_id":     meal.ID,
		"provider_id": providerProfileID,
	}).Info("Meal created")
	return s.findWithRelations(meal.ID)
}

func (s *mealService) ListMeals(filters MealFilters) ([]models.Meal, error) {
	query := s.db.Model(&models.Meal{}).
		Joins("JOIN provider_profiles ON provider_profiles.id = meals.provider_id").
		Joins("JOIN users ON users.id = provider_profiles.user_id").
		Where("users.status = ?", models.UserStatusApproved)

	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where(`LOWER(meals.name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("meals.category_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("name = ?", category))
	}
	if minPrice, ok := parseOptionalFloat(filters.MinPrice); ok {
		query = query.Where("meals.price >= ?", minPrice)
	}
	if maxPrice, ok := parseOptionalFloat(filters.MaxPrice); ok {
		query = query.Where("meals.price <= ?", maxPrice)
	}

	var meals []models.Meal
	err := query.
		Preload("Category").
		Preload("Provider").
		Preload("Provider.User", selectPublicUser).
		Order("meals.created_at desc").
		Find(&meals).Error
	if err != nil {
		return nil, models.NewInternalError("failed to list meals", err)
	}
	return meals, nil
}

func (s *mealService) GetMealDetails(id string) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.
		Preload("Category").
		Preload("Provider").
		Preload("Provider.User", selectPublicUser).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at desc")
		}).
		Preload("Reviews.Customer", selectPublicUser).
		Where("id = ?", id).
		First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Meal not found")
		}
		return nil, models.NewInternalError("failed to load meal", err)
	}
	return &meal, nil
}

func (s *mealService) UpdateMeal(requester *models.CurrentUser, id string, patch MealPatch) (*models.Meal, error) {
	meal, err := s.findOwned(requester, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return models.NewValidationError("Meal name cannot be empty")
			}
			updates["name"] = name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Price != nil {
			updates["price"] = CoercePrice(patch.Price)
		}
		if patch.ImageURL != nil && strings.TrimSpace(*patch.ImageURL) != "" {
			updates["image_url"] = *normalizeImagePath(patch.ImageURL)
		}
		if patch.Category != nil && strings.TrimSpace(*patch.Category) != "" {
			category, err := connectOrCreateCategory(tx, strings.TrimSpace(*patch.Category))
			if err != nil {
				return err
			}
			updates["category_id"] = category.ID
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(meal).Updates(updates).Error
	})
	if err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A category with a similar name already exists")
		}
		return nil, models.NewInternalError("failed to update meal", err)
	}
	return s.findWithRelations(id)
}

func (s *mealService) DeleteMeal(requester *models.CurrentUser, id string) error {
	meal, err := s.findOwned(requester, id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		// Order items keep their price snapshot
		if err := tx.Model(&models.OrderItem{}).Where("meal_id = ?", meal.ID).Update("meal_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(meal).Error
	})
	if err != nil {
		return models.NewInternalError("failed to delete meal", err)
	}

	log.WithField("meal_id", id).Info("Meal deleted")
	return nil
}

// findOwned loads a meal and checks the requester may modify it.
// Admins may modify any meal; providers only their own and only while approved.
func (s *mealService) findOwned(requester *models.CurrentUser, id string) (*models.Meal, error) {
	if requester == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if !requester.IsAdmin() {
		if _, err := requireApprovedProvider(s.db, requester.ProviderProfileID); err != nil {
			return nil, err
		}
	}

	var meal models.Meal
	if err := s.db.Where("id = ?", id).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Meal not found")
		}
		return nil, models.NewInternalError("failed to load meal", err)
	}
	if !requester.IsAdmin() && meal.ProviderID != requester.ProviderProfileID {
		return nil, models.NewForbiddenError("You can only modify your own meals")
	}
	return &meal, nil
}

func (s *mealService) findWithRelations(id string) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.
		Preload("Category").
		Preload("Provider").
		Preload("Provider.User", selectPublicUser).
		Where("id = ?", id).
		First(&meal).Error
	if err != nil {
		return nil, models.NewInternalError("failed to load meal", err)
	}
	return &meal, nil
}

// selectPublicUser limits preloaded users to the fields shown publicly
func selectPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "image", "status", "role")
}
