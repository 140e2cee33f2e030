package mongodb

import (
	"context"
	"fmt"
	"time"

	"bringalong/internal/models"
	"bringalong/internal/repositories/interfaces"
	"bringalong/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tripRequestRepository struct {
	collection *mongo.Collection
}

func NewTripRequestRepository(db *mongo.Database) interfaces.TripRequestRepository {
	return &tripRequestRepository{
		collection: db.Collection("trip_requests"),
	}
}

func (r *tripRequestRepository) Create(ctx context.Context, request *models.TripRequest) error {
	now := time.Now()
	request.ID = primitive.NewObjectID()
	request.CreatedAt = now
	request.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		// unique index on (tripId, requesterId)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("trip request: %w", interfaces.ErrDuplicate)
		}
		return fmt.Errorf("failed to create trip request: %w", err)
	}

	return nil
}

func (r *tripRequestRepository) GetByTrip(ctx context.Context, tripID primitive.ObjectID) ([]*models.TripRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"tripId": tripID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := make([]*models.TripRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode trip requests: %w", err)
	}

	return requests, nil
}

func (r *tripRequestRepository) GetByRequester(ctx context.Context, requesterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.TripRequest, int64, error) {
	filter := bson.M{"requesterId": requesterID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count trip requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(params.GetSkip()).
		SetLimit(int64(params.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get trip requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := make([]*models.TripRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, fmt.Errorf("failed to decode trip requests: %w", err)
	}

	return requests, total, nil
}
