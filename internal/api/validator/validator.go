package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"formgate/internal/models"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	if err := v.RegisterValidation("embed_decision", validateEmbedDecision); err != nil {
		return nil
	}
	if err := v.RegisterValidation("embed_status", validateEmbedStatus); err != nil {
		return nil
	}
	if err := v.RegisterValidation("form_role", validateFormRole); err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

func validateEmbedDecision(fl playgroundvalidator.FieldLevel) bool {
	decision := models.EmbedDomainStatus(fl.Field().String())
	return decision == models.EmbedDomainApproved || decision == models.EmbedDomainDenied
}

func validateEmbedStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.EmbedDomainStatus(fl.Field().String()).Valid()
}

func validateFormRole(fl playgroundvalidator.FieldLevel) bool {
	role := fl.Field().String()
	switch role {
	case models.RoleOwner, models.RoleTeamManager, models.RoleEditor, models.RoleViewer, models.RoleSubmitter:
		return true
	}
	return false
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// EmbedDomainRequest is the body of a domain allow-list request.
type EmbedDomainRequest struct {
	Domain string `json:"domain" validate:"required,fqdn"`
}

// ReviewRequest is the body of an embed-domain review decision.
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,embed_decision"`
}

// RoleAssignmentRequest assigns or removes a role on a form.
type RoleAssignmentRequest struct {
	UserID   string `json:"userId" validate:"required,uuid"`
	RoleCode string `json:"roleCode" validate:"required,form_role"`
}
