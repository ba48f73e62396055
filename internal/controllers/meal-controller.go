package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/storage"
	"github.com/gin-gonic/gin"
)

// MealController handles HTTP requests related to meals
type MealController interface {
	// ListMeals retrieves meals of approved providers
	ListMeals(c *gin.Context)
	// GetMeal retrieves a meal with its reviews
	GetMeal(c *gin.Context)
	// CreateMeal adds a meal to the requester's menu
	CreateMeal(c *gin.Context)
	// UpdateMeal partially updates a meal
	UpdateMeal(c *gin.Context)
	// DeleteMeal deletes a meal by its ID
	DeleteMeal(c *gin.Context)
}

type mealController struct {
	service services.MealService
	images  storage.ImageStore
}

// NewMealController creates a new instance of MealController
func NewMealController(service services.MealService, images storage.ImageStore) MealController {
	return &mealController{service: service, images: images}
}

// ListMeals godoc
// @Summary List meals
// @Description Meals of approved providers, newest first, with optional filters
// @Tags meals
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param category query string false "Exact category name"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {object} Response{data=[]models.Meal}
// @Failure 500 {object} ErrorResponse
// @Router /api/meals [get]
func (mc *mealController) ListMeals(c *gin.Context) {
	var filters services.MealFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}

	meals, err := mc.service.ListMeals(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", meals)
}

// GetMeal godoc
// @Summary Get meal details
// @Description A meal with its category, provider and reviews
// @Tags meals
// @Produce json
// @Param id path string true "Meal ID"
// @Success 200 {object} Response{data=models.Meal}
// @Failure 404 {object} ErrorResponse
// @Router /api/meals/{id} [get]
func (mc *mealController) GetMeal(c *gin.Context) {
	meal, err := mc.service.GetMealDetails(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", meal)
}

// CreateMeal godoc
// @Summary Create a meal
// @Description Accepts JSON, or multipart form data with an optional image file
// @Tags meals
// @Accept json,mpfd
// @Produce json
// @Param meal body services.MealInput true "Meal"
// @Success 201 {object} Response{data=models.Meal}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meals [post]
func (mc *mealController) CreateMeal(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var input services.MealInput
	if isMultipart(c) {
		input = services.MealInput{
			Name:        c.PostForm("name"),
			Description: optionalForm(c, "description"),
			Price:       c.PostForm("price"),
			ImageURL:    optionalForm(c, "imageUrl"),
			Category:    c.PostForm("category"),
		}
	} else if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Category) == "" {
		respondError(c, models.NewValidationError("Missing required fields: name or category"))
		return
	}

	uploaded, ok := mc.saveImage(c)
	if !ok {
		return
	}
	if uploaded != nil {
		input.ImageURL = uploaded
	}

	meal, err := mc.service.CreateMeal(user.ProviderProfileID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Meal created successfully!", meal)
}

// UpdateMeal godoc
// @Summary Update a meal
// @Description Partial update; accepts JSON or multipart form data with an optional image file
// @Tags meals
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Meal ID"
// @Param meal body services.MealPatch true "Fields to change"
// @Success 200 {object} Response{data=models.Meal}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meals/{id} [patch]
func (mc *mealController) UpdateMeal(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var patch services.MealPatch
	if isMultipart(c) {
		patch = services.MealPatch{
			Name:        optionalForm(c, "name"),
			Description: optionalForm(c, "description"),
			ImageURL:    optionalForm(c, "imageUrl"),
			Category:    optionalForm(c, "category"),
		}
		if price, exists := c.GetPostForm("price"); exists {
			patch.Price = price
		}
	} else if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	uploaded, ok := mc.saveImage(c)
	if !ok {
		return
	}
	if uploaded != nil {
		patch.ImageURL = uploaded
	}

	meal, err := mc.service.UpdateMeal(user, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Meal updated successfully!", meal)
}

// DeleteMeal godoc
// @Summary Delete a meal
// @Description Removes the meal and its reviews; past orders keep their price snapshot
// @Tags meals
// @Produce json
// @Param id path string true "Meal ID"
// @Success 200 {object} Response
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meals/{id} [delete]
func (mc *mealController) DeleteMeal(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	if err := mc.service.DeleteMeal(user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Meal deleted successfully", nil)
}

// saveImage stores the optional "image" file. The second result is false when a response was written.
func (mc *mealController) saveImage(c *gin.Context) (*string, bool) {
	if !isMultipart(c) {
		return nil, true
	}
	file, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}
	if mc.images == nil {
		respondError(c, models.NewValidationError("Image uploads are not enabled"))
		return nil, false
	}

	ref, err := mc.images.Save(file)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &ref, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func optionalForm(c *gin.Context, key string) *string {
	value, exists := c.GetPostForm(key)
	if !exists {
		return nil
	}
	return &value
}
