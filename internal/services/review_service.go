package services

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateReviewInput is the payload for reviewing a meal
type CreateReviewInput struct {
	MealID  string  `json:"mealId" binding:"required"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// ReviewService provides methods to post and read meal reviews
type ReviewService interface {
	// AddReview stores a review and schedules the meal rating recomputation
	AddReview(author *models.CurrentUser, input CreateReviewInput) (*models.Review, error)
	// ListMealReviews returns the reviews of a meal, newest first
	ListMealReviews(mealID string) ([]models.Review, error)
}

type reviewService struct {
	db      *gorm.DB
	ratings RatingScheduler
}

func NewReviewService(db *gorm.DB, ratings RatingScheduler) ReviewService {
	return &reviewService{db: db, ratings: ratings}
}

func (s *reviewService) AddReview(author *models.CurrentUser, input CreateReviewInput) (*models.Review, error) {
	if author == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if !author.Status.InGoodStanding() {
		return nil, models.NewForbiddenError("Your account is not active.")
	}
	if input.Rating < models.MinRating || input.Rating > models.MaxRating {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	mealID := strings.TrimSpace(input.MealID)
	var count int64
	if err := s.db.Model(&models.Meal{}).Where("id = ?", mealID).Count(&count).Error; err != nil {
		return nil, models.NewInternalError("failed to load meal", err)
	}
	if count == 0 {
		return nil, models.NewNotFoundError("Meal not found")
	}

	var comment *string
	if input.Comment != nil {
		if trimmed := strings.TrimSpace(*input.Comment); trimmed != "" {
			comment = &trimmed
		}
	}

	review := &models.Review{
		MealID:     mealID,
		CustomerID: author.ID,
		Rating:     input.Rating,
		Comment:    comment,
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, models.NewInternalError("failed to create review", err)
	}

	metrics.RecordReviewCreated()
	log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"meal_id":   mealID,
		"rating":    review.Rating,
	}).Info("Review created")

	s.ratings.Schedule(mealID)
	return review, nil
}

func (s *reviewService) ListMealReviews(mealID string) ([]models.Review, error) {
	var meal models.Meal
	if err := s.db.Select("id").Where("id = ?", mealID).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Meal not found")
		}
		return nil, models.NewInternalError("failed to load meal", err)
	}

	var reviews []models.Review
	err := s.db.Preload("Customer", selectPublicUser).
		Where("meal_id = ?", mealID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, models.NewInternalError("failed to list reviews", err)
	}
	return reviews, nil
}
