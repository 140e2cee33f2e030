package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"bringalong/internal/models"
	"bringalong/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json field names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validation functions
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("currency_code", validateCurrencyCode)
	validate.RegisterValidation("trip_status", validateTripStatus)
}

// Common validation errors
var (
	ErrInvalidObjectID = errors.New("invalid object ID format")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidStatus   = errors.New("invalid trip status")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into a field to message map for API responses.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		if _, exists := details[err.Field]; !exists {
			details[err.Field] = err.Message
		}
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "request", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "currency_code":
		return "Invalid currency code"
	case "trip_status":
		return "Status must be one of active, completed, cancelled"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// Custom validation functions
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

// validateCurrencyCode accepts any ISO 4217 shaped code; conversion reports
// codes the rate provider does not know.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" {
		return true
	}
	return utils.IsCurrencyCode(utils.NormalizeCurrencyCode(code))
}

func validateTripStatus(fl validator.FieldLevel) bool {
	return models.TripStatus(fl.Field().String()).IsValid()
}

// Helper functions for common validations
func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

func SanitizeInput(input string) string {
	// Remove HTML tags and trim whitespace
	cleaned := htmlTagRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
