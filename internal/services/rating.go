package services

import (
	"context"
	"sync"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RatingService recomputes the denormalized rating fields of a meal
type RatingService interface {
	// UpdateMealRating stores the mean rating and review count of a meal
	UpdateMealRating(mealID string) error
}

// RatingScheduler queues a rating recomputation without blocking the caller
type RatingScheduler interface {
	Schedule(mealID string)
}

type ratingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) RatingService {
	return &ratingService{db: db}
}

func (s *ratingService) UpdateMealRating(mealID string) error {
	var aggregate struct {
		Average float64
		Total   int64
	}
	err := s.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("meal_id = ?", mealID).
		Scan(&aggregate).Error
	if err != nil {
		return err
	}

	result := s.db.Model(&models.Meal{}).
		Where("id = ?", mealID).
		Updates(map[string]interface{}{
			"average_rating": aggregate.Average,
			"total_reviews":  aggregate.Total,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Meal not found")
	}
	return nil
}

// RatingWorker recomputes meal ratings in the background. Ratings are
// eventually consistent: a review is visible before the meal aggregate catches up.
// Failures are logged and counted, never returned to the review author.
type RatingWorker struct {
	ratings RatingService
	queue   chan string

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewRatingWorker(ratings RatingService, queueSize int) *RatingWorker {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &RatingWorker{
		ratings: ratings,
		queue:   make(chan string, queueSize),
	}
}

// Start launches the worker goroutine. It stops when ctx is done or Close drains the queue.
func (w *RatingWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case mealID, ok := <-w.queue:
				if !ok {
					return
				}
				metrics.SetRatingQueueDepth(len(w.queue))
				w.process(mealID)
			case <-ctx.Done():
				log.Warn("Rating worker stopped before the queue was drained")
				return
			}
		}
	}()
}

// Schedule queues a recomputation. When the queue is full or the worker is
// closed the recomputation runs inline.
func (w *RatingWorker) Schedule(mealID string) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		w.process(mealID)
		return
	}
	select {
	case w.queue <- mealID:
		w.mu.RUnlock()
		metrics.SetRatingQueueDepth(len(w.queue))
	default:
		w.mu.RUnlock()
		log.WithField("meal_id", mealID).Warn("Rating queue full, recomputing inline")
		w.process(mealID)
	}
}

// Close stops accepting work and waits until queued recomputations finish
func (w *RatingWorker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *RatingWorker) process(mealID string) {
	if err := w.ratings.UpdateMealRating(mealID); err != nil {
		metrics.RecordRatingRecompute(false)
		log.WithFields(logrus.Fields{
			"meal_id": mealID,
			"error":   err.Error(),
		}).Error("Failed to update meal rating")
		return
	}
	metrics.RecordRatingRecompute(true)
}
