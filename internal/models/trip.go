package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripStatus string

const (
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusActive, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

type Trip struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	FromCity     string             `json:"fromCity" bson:"fromCity"`
	FromCountry  string             `json:"fromCountry" bson:"fromCountry"`
	ToCity       string             `json:"toCity" bson:"toCity"`
	ToCountry    string             `json:"toCountry" bson:"toCountry"`
	TravelDate   time.Time          `json:"travelDate" bson:"travelDate"`
	ReturnDate   *time.Time         `json:"returnDate,omitempty" bson:"returnDate,omitempty"`
	ServiceFee   float64            `json:"serviceFee" bson:"serviceFee"`
	Currency     string             `json:"currency" bson:"currency"`
	Status       TripStatus         `json:"status" bson:"status"`
	Notes        string             `json:"notes,omitempty" bson:"notes,omitempty"`
	ViewCount    int64              `json:"viewCount" bson:"viewCount"`
	RequestCount int64              `json:"requestCount" bson:"requestCount"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Populated for display, never stored
	User *TripOwner `json:"user,omitempty" bson:"-"`
}

// TripOwner is the public summary of the user who posted a trip.
type TripOwner struct {
	ID           primitive.ObjectID `json:"_id"`
	Name         string             `json:"name"`
	ProfileImage string             `json:"profileImage,omitempty"`
}

type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypeBroader MatchType = "broader"
)

// TripMatch is a trip tagged with the tier it was found in.
type TripMatch struct {
	*Trip
	MatchType MatchType `json:"matchType"`
	NearToYou bool      `json:"nearToYou,omitempty"`
}

// SearchQuery holds the parsed search parameters. Zero values mean "no
// constraint" for strings and dates.
type SearchQuery struct {
	From string
	To   string

	// Legacy single-field parameters, original direction only
	FromCity    string
	FromCountry string
	ToCity      string
	ToCountry   string

	FromDate  *time.Time
	ToDate    *time.Time
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
	Status    TripStatus
}

type SearchResult struct {
	Trips          []*TripMatch `json:"trips"`
	TotalPages     int          `json:"totalPages"`
	CurrentPage    int          `json:"currentPage"`
	Total          int          `json:"total"`
	ExactMatches   int          `json:"exactMatches"`
	BroaderMatches int          `json:"broaderMatches"`
}

// BrowseQuery drives the "all trips" listing.
type BrowseQuery struct {
	FromDate  *time.Time
	ToDate    *time.Time
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
	Status    TripStatus
	// ViewerCurrency is the currency fees are displayed in.
	ViewerCurrency string
}

type BrowseItem struct {
	*Trip
	ConvertedFee    float64 `json:"convertedFee"`
	DisplayCurrency string  `json:"displayCurrency"`
}

type BrowseResult struct {
	Trips       []*BrowseItem `json:"trips"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Total       int           `json:"total"`
}

type CreateTripRequest struct {
	FromCity    string     `json:"fromCity" validate:"required,min=2,max=100"`
	FromCountry string     `json:"fromCountry" validate:"required,min=2,max=100"`
	ToCity      string     `json:"toCity" validate:"required,min=2,max=100"`
	ToCountry   string     `json:"toCountry" validate:"required,min=2,max=100"`
	TravelDate  time.Time  `json:"travelDate" validate:"required"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
	ServiceFee  float64    `json:"serviceFee" validate:"gte=0"`
	Currency    string     `json:"currency" validate:"required,currency_code"`
	Notes       string     `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateTripRequest carries a partial update; nil fields are left unchanged.
type UpdateTripRequest struct {
	FromCity    *string    `json:"fromCity,omitempty" validate:"omitempty,min=2,max=100"`
	FromCountry *string    `json:"fromCountry,omitempty" validate:"omitempty,min=2,max=100"`
	ToCity      *string    `json:"toCity,omitempty" validate:"omitempty,min=2,max=100"`
	ToCountry   *string    `json:"toCountry,omitempty" validate:"omitempty,min=2,max=100"`
	TravelDate  *time.Time `json:"travelDate,omitempty"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
	ServiceFee  *float64   `json:"serviceFee,omitempty" validate:"omitempty,gte=0"`
	Currency    *string    `json:"currency,omitempty" validate:"omitempty,currency_code"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateTripStatusRequest struct {
	Status TripStatus `json:"status" validate:"required,trip_status"`
}
