package services

import "errors"

var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrNotTripOwner       = errors.New("trip belongs to another user")
	ErrTripNotActive      = errors.New("trip is not active")
	ErrOwnTrip            = errors.New("cannot request your own trip")
	ErrDuplicateRequest   = errors.New("trip already requested")
	ErrInvalidTripDates   = errors.New("return date is before travel date")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrUnsupportedRate    = errors.New("no exchange rate for currency")
	ErrInvalidImage       = errors.New("invalid image")
	ErrUnsupportedAddress = errors.New("address cannot be geolocated")
)
