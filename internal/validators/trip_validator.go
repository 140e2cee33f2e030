package validators

import (
	"time"

	"bringalong/internal/models"
	"bringalong/internal/utils"
)

// ValidateCreateTrip validates and normalizes a new trip listing.
func ValidateCreateTrip(req *models.CreateTripRequest) ValidationErrors {
	req.FromCity = SanitizeInput(req.FromCity)
	req.FromCountry = SanitizeInput(req.FromCountry)
	req.ToCity = SanitizeInput(req.ToCity)
	req.ToCountry = SanitizeInput(req.ToCountry)
	req.Notes = SanitizeInput(req.Notes)
	req.Currency = utils.NormalizeCurrencyCode(req.Currency)

	errors := ValidateStruct(req)

	if req.ReturnDate != nil && req.ReturnDate.Before(req.TravelDate) {
		errors = append(errors, ValidationError{
			Field:   "returnDate",
			Message: "Return date must not be before the travel date",
		})
	}

	// Allow trips departing earlier today
	if !req.TravelDate.IsZero() && req.TravelDate.Before(utils.StartOfDay(time.Now().UTC())) {
		errors = append(errors, ValidationError{
			Field:   "travelDate",
			Message: "Travel date must not be in the past",
		})
	}

	return errors
}

func ValidateUpdateTrip(req *models.UpdateTripRequest) ValidationErrors {
	for _, field := range []*string{req.FromCity, req.FromCountry, req.ToCity, req.ToCountry, req.Notes} {
		if field != nil {
			*field = SanitizeInput(*field)
		}
	}
	if req.Currency != nil {
		*req.Currency = utils.NormalizeCurrencyCode(*req.Currency)
	}

	errors := ValidateStruct(req)

	if req.TravelDate != nil && req.ReturnDate != nil && req.ReturnDate.Before(*req.TravelDate) {
		errors = append(errors, ValidationError{
			Field:   "returnDate",
			Message: "Return date must not be before the travel date",
		})
	}

	return errors
}

func ValidateUpdateTripStatus(req *models.UpdateTripStatusRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateTripRequest(req *models.CreateTripRequestRequest) ValidationErrors {
	req.ItemName = SanitizeInput(req.ItemName)
	req.Description = SanitizeInput(req.Description)
	req.Currency = utils.NormalizeCurrencyCode(req.Currency)
	return ValidateStruct(req)
}
