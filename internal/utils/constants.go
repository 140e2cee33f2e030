package utils

import "time"

// Application Constants
const (
	AppName    = "BringAlong"
	AppVersion = "1.0.0"

	DefaultCurrency = "USD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128

	// File Upload
	MaxImageSize    = 5 * 1024 * 1024 // 5MB
	AvatarMaxWidth  = 512
	AvatarMaxHeight = 512
	AvatarQuality   = 85
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Trip status values
const (
	TripStatusActive    = "active"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
)

// Search sort keys and directions
const (
	SortByTravelDate = "travelDate"
	SortByPrice      = "price"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Error messages
const (
	ErrInternalServer     = "Internal server error"
	ErrUnauthorized       = "Unauthorized access"
	ErrForbidden          = "Access forbidden"
	ErrValidationFailed   = "Validation failed"
	ErrInvalidCredentials = "Invalid email or password"
	ErrInvalidToken       = "Invalid or expired token"
	ErrFileTooLarge       = "File size exceeds the 5MB limit"
	ErrInvalidFileType    = "Only jpeg and png images are accepted"
)

// Context keys set by middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextRequestID = "request_id"
)
