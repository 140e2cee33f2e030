package validators

import (
	"strings"

	"bringalong/internal/models"
	"bringalong/internal/utils"
)

func ValidateRegistration(req *models.RegisterRequest) ValidationErrors {
	req.Name = SanitizeInput(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.PreferredCurrency = utils.NormalizeCurrencyCode(req.PreferredCurrency)
	req.Country = SanitizeInput(req.Country)

	errors := ValidateStruct(req)

	if len(req.Password) > 0 && strings.TrimSpace(req.Password) == "" {
		errors = append(errors, ValidationError{
			Field:   "password",
			Message: "Password must not be blank",
		})
	}

	return errors
}

func ValidateLogin(req *models.LoginRequest) ValidationErrors {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return ValidateStruct(req)
}

func ValidateRefreshToken(req *models.RefreshTokenRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateUpdateProfile(req *models.UpdateProfileRequest) ValidationErrors {
	if req.Name != nil {
		*req.Name = SanitizeInput(*req.Name)
	}
	if req.PreferredCurrency != nil {
		*req.PreferredCurrency = utils.NormalizeCurrencyCode(*req.PreferredCurrency)
	}
	if req.Country != nil {
		*req.Country = SanitizeInput(*req.Country)
	}
	return ValidateStruct(req)
}
