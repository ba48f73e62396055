package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope of every successful JSON response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed JSON response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, count int, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// respondBindError reports request decoding failures as validation errors
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, describeFieldError(fieldErr))
		}
		respondError(c, models.NewValidationError(strings.Join(messages, "; ")))
		return
	}
	respondError(c, models.NewValidationError("Invalid request body"))
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param())
	case "role", "userstatus", "orderstatus", "categorystatus":
		return fmt.Sprintf("%s has an invalid value", field)
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fieldErr.Tag())
	}
}

// requester returns the authenticated user, aborting with 401 when there is none
func requester(c *gin.Context) (*models.CurrentUser, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, models.NewUnauthorizedError("You are not authorized!"))
		return nil, false
	}
	return user, true
}
