package interfaces

import (
	"context"

	"bringalong/internal/models"
	"bringalong/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripRequestRepository interface {
	Create(ctx context.Context, request *models.TripRequest) error
	GetByTrip(ctx context.Context, tripID primitive.ObjectID) ([]*models.TripRequest, error)
	GetByRequester(ctx context.Context, requesterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.TripRequest, int64, error)
}
