package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	service services.ReviewService
}

func NewReviewController(service services.ReviewService) *ReviewController {
	return &ReviewController{service: service}
}

// CreateReview godoc
// @Summary Review a meal
// @Description Rating from 1 to 5 with an optional comment. The meal rating is refreshed in the background.
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body services.CreateReviewInput true "Review"
// @Success 201 {object} Response{data=models.Review}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/reviews [post]
func (rc *ReviewController) CreateReview(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var input services.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := rc.service.AddReview(user, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Review submitted successfully", review)
}

// ListMealReviews godoc
// @Summary List reviews of a meal
// @Tags reviews
// @Produce json
// @Param mealId path string true "Meal ID"
// @Success 200 {object} Response{data=[]models.Review}
// @Router /api/reviews/meal/{mealId} [get]
func (rc *ReviewController) ListMealReviews(c *gin.Context) {
	reviews, err := rc.service.ListMealReviews(c.Param("mealId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, len(reviews), reviews)
}
