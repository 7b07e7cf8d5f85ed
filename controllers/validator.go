package controllers

import (
	"fmt"
	"net/http"

	"senetic-sync/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// TriggerImportRequest is the optional JSON body of the import trigger.
type TriggerImportRequest struct {
	Categories  []string `json:"categories" validate:"omitempty,dive,required"`
	Brands      []string `json:"brands" validate:"omitempty,dive,required"`
	MaxProducts int      `json:"max_products" validate:"gte=0,lte=10000"`
}

// RequestValidator handles input validation for the import endpoints.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// ParseTriggerRequest reads optional run overrides. GET triggers and empty
// bodies mean the configured defaults.
func (rv *RequestValidator) ParseTriggerRequest(c *gin.Context) (services.ImportOptions, error) {
	if c.Request.Method == http.MethodGet || c.Request.ContentLength == 0 {
		return services.ImportOptions{}, nil
	}

	var req TriggerImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.ImportOptions{}, fmt.Errorf("invalid request body: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return services.ImportOptions{}, fmt.Errorf("validation failed: %w", err)
	}

	return services.ImportOptions{
		Categories:  req.Categories,
		Brands:      req.Brands,
		MaxProducts: req.MaxProducts,
	}, nil
}
