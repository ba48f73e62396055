package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CategoryController handles HTTP requests related to meal categories
type CategoryController interface {
	ListCategories(c *gin.Context)
	CreateCategory(c *gin.Context)
	UpdateCategory(c *gin.Context)
	DeleteCategory(c *gin.Context)
}

type categoryController struct {
	service services.CategoryService
}

// NewCategoryController creates a new instance of CategoryController
func NewCategoryController(service services.CategoryService) CategoryController {
	return &categoryController{service: service}
}

// ListCategories godoc
// @Summary List categories
// @Description Every category with the number of meals using it
// @Tags categories
// @Produce json
// @Success 200 {object} Response{data=[]models.Category}
// @Router /api/categories [get]
func (cc *categoryController) ListCategories(c *gin.Context) {
	categories, err := cc.service.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body services.CategoryInput true "Category"
// @Success 201 {object} Response{data=models.Category}
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/categories [post]
func (cc *categoryController) CreateCategory(c *gin.Context) {
	var input services.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := cc.service.CreateCategory(input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory godoc
// @Summary Update a category
// @Description Rename a category, change its status, or both
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body services.CategoryPatch true "Fields to change"
// @Success 200 {object} Response{data=models.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/categories/{id} [patch]
func (cc *categoryController) UpdateCategory(c *gin.Context) {
	var patch services.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := cc.service.UpdateCategory(c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Fails while any meal still uses the category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/categories/{id} [delete]
func (cc *categoryController) DeleteCategory(c *gin.Context) {
	if err := cc.service.DeleteCategory(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}
