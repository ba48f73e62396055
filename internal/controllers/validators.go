package controllers

import (
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the enum binding tags used by request payloads.
// It must run before the first request is bound.
func RegisterValidators() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]validator.Func{
		"role": func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).IsValid()
		},
		"userstatus": func(fl validator.FieldLevel) bool {
			return models.UserStatus(strings.ToUpper(fl.Field().String())).IsValid()
		},
		"categorystatus": func(fl validator.FieldLevel) bool {
			return models.CategoryStatus(strings.ToUpper(fl.Field().String())).IsValid()
		},
		"orderstatus": func(fl validator.FieldLevel) bool {
			return models.OrderStatus(strings.ToUpper(fl.Field().String())).IsValid()
		},
	}
	for tag, rule := range rules {
		if err := engine.RegisterValidation(tag, rule); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}
