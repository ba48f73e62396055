package services

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"gorm.io/gorm"
)

// CategoryInput is the payload for creating a category
type CategoryInput struct {
	Name   string                `json:"name" binding:"required"`
	Status models.CategoryStatus `json:"status" binding:"omitempty,categorystatus"`
}

// CategoryPatch renames a category or changes its status; empty fields are left unchanged
type CategoryPatch struct {
	Name   *string               `json:"name"`
	Status models.CategoryStatus `json:"status" binding:"omitempty,categorystatus"`
}

// CategoryService provides methods to manage meal categories
type CategoryService interface {
	// ListCategories returns every category with its meal count, newest first
	ListCategories() ([]models.Category, error)
	CreateCategory(input CategoryInput) (*models.Category, error)
	// UpdateCategory renames a category, regenerating its slug, and/or changes its status
	UpdateCategory(id string, patch CategoryPatch) (*models.Category, error)
	// DeleteCategory removes a category that no meal references
	DeleteCategory(id string) error
}

type categoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) CategoryService {
	return &categoryService{db: db}
}

func (s *categoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Model(&models.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM meals WHERE meals.category_id = categories.id) AS meal_count").
		Order("categories.created_at desc").
		Find(&categories).Error
	if err != nil {
		return nil, models.NewInternalError("failed to list categories", err)
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	status := normalizeCategoryStatus(input.Status)
	if status == "" {
		status = models.CategoryStatusActive
	}
	if !status.IsValid() {
		return nil, models.NewValidationError("Invalid category status")
	}

	category := &models.Category{Name: name, Slug: Slugify(name), Status: status}
	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("Category already exists")
		}
		return nil, models.NewInternalError("failed to create category", err)
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(id string, patch CategoryPatch) (*models.Category, error) {
	category, err := s.find(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, models.NewValidationError("Category name cannot be empty")
		}
		if name != category.Name {
			updates["name"] = name
			updates["slug"] = Slugify(name)
		}
	}
	if status := normalizeCategoryStatus(patch.Status); status != "" {
		if !status.IsValid() {
			return nil, models.NewValidationError("Invalid category status")
		}
		updates["status"] = status
	}
	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("Category already exists")
		}
		return nil, models.NewInternalError("failed to update category", err)
	}
	return s.find(id)
}

func (s *categoryService) DeleteCategory(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Category not found")
			}
			return models.NewInternalError("failed to load category", err)
		}

		var meals int64
		if err := tx.Model(&models.Meal{}).Where("category_id = ?", id).Count(&meals).Error; err != nil {
			return models.NewInternalError("failed to count meals", err)
		}
		if meals > 0 {
			return models.NewConflictError("Category is still used by meals")
		}

		if err := tx.Delete(&category).Error; err != nil {
			return models.NewInternalError("failed to delete category", err)
		}
		return nil
	})
}

func (s *categoryService) find(id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category not found")
		}
		return nil, models.NewInternalError("failed to load category", err)
	}
	return &category, nil
}

// connectOrCreateCategory finds a category by exact name or creates it with status APPROVED
func connectOrCreateCategory(tx *gorm.DB, name string) (*models.Category, error) {
	category := models.Category{}
	err := tx.Where(models.Category{Name: name}).
		Attrs(models.Category{Slug: Slugify(name), Status: models.CategoryStatusApproved}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func normalizeCategoryStatus(status models.CategoryStatus) models.CategoryStatus {
	return models.CategoryStatus(strings.ToUpper(strings.TrimSpace(string(status))))
}
