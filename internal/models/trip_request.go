package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripRequestStatus string

const (
	TripRequestStatusPending  TripRequestStatus = "pending"
	TripRequestStatusAccepted TripRequestStatus = "accepted"
	TripRequestStatusDeclined TripRequestStatus = "declined"
)

// TripRequest records a requester's interest in having something brought
// along on a trip.
type TripRequest struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	TripID      primitive.ObjectID `json:"tripId" bson:"tripId"`
	RequesterID primitive.ObjectID `json:"requesterId" bson:"requesterId"`
	ItemName    string             `json:"itemName" bson:"itemName"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	OfferedFee  float64            `json:"offeredFee" bson:"offeredFee"`
	Currency    string             `json:"currency" bson:"currency"`
	Status      TripRequestStatus  `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateTripRequestRequest struct {
	ItemName    string  `json:"itemName" validate:"required,min=2,max=200"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
	OfferedFee  float64 `json:"offeredFee" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"required,currency_code"`
}
