package mongodb

import (
	"context"
	"errors"
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

type tripRepository struct {
	collection *mongo.Collection
}

func NewTripRepository(db *mongo.Database) interfaces.TripRepository {
	return &tripRepository{
		collection: db.Collection("trips"),
	}
}

// Basic CRUD operations
func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	now := time.Now()
	trip.ID = primitive.NewObjectID()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	var trip models.Trip
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("trip %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}

func (r *tripRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("trip %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *tripRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TripStatus) error {
	return r.Update(ctx, id, map[string]interface{}{
		"status": status,
	})
}

func (r *tripRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("trip %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

// Search and filtering
func (r *tripRepository) Find(ctx context.Context, filter bson.M, opts interfaces.FindOptions) ([]*models.Trip, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := make([]*models.Trip, 0)
	for cursor.Next(ctx) {
		var trip models.Trip
		if err := cursor.Decode(&trip); err != nil {
			return nil, fmt.Errorf("failed to decode trip: %w", err)
		}
		trips = append(trips, &trip)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return trips, nil
}

func (r *tripRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

func (r *tripRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Trip, int64, error) {
	filter := bson.M{"userId": userID}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	trips, err := r.Find(ctx, filter, interfaces.FindOptions{
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
		Skip:  params.GetSkip(),
		Limit: int64(params.Limit),
	})
	if err != nil {
		return nil, 0, err
	}

	return trips, total, nil
}

// Counters
func (r *tripRepository) IncrementViewCount(ctx context.Context, id primitive.ObjectID) error {
	return r.increment(ctx, id, "viewCount")
}

func (r *tripRepository) IncrementRequestCount(ctx context.Context, id primitive.ObjectID) error {
	return r.increment(ctx, id, "requestCount")
}

func (r *tripRepository) increment(ctx context.Context, id primitive.ObjectID, field string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return nil
}
