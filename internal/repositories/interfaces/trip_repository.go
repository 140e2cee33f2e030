package interfaces

import (
	"context"

	"bringalong/internal/models"
	"bringalong/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindOptions narrows a filtered find. Zero Limit means no limit.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

type TripRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TripStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Search and filtering
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]*models.Trip, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Trip, int64, error)

	// Counters
	IncrementViewCount(ctx context.Context, id primitive.ObjectID) error
	IncrementRequestCount(ctx context.Context, id primitive.ObjectID) error
}
