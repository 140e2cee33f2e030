package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bringalong/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationsCollection = "migrations"

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log := m.logger.WithFields(map[string]interface{}{
			"version":     migration.Version,
			"description": migration.Description,
		})
		log.Info("Running migration")

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}

		log.Info("Migration completed")
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Info("Reverting migration")

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updatedAt", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users collection with indexes",
			Up:          createUsersIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				return db.Collection("users").Drop(ctx)
			},
		},
		{
			Version:     2,
			Description: "Create trips collection with search indexes",
			Up:          createTripsIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				return db.Collection("trips").Drop(ctx)
			},
		},
		{
			Version:     3,
			Description: "Create trip requests collection with indexes",
			Up:          createTripRequestsIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				return db.Collection("trip_requests").Drop(ctx)
			},
		},
	}
}

func createUsersIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	_, err := db.Collection("users").Indexes().CreateMany(ctx, indexes)
	return err
}

func createTripsIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "travelDate", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "serviceFee", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "fromCountry", Value: 1}, {Key: "toCountry", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "fromCity", Value: 1}, {Key: "toCity", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := db.Collection("trips").Indexes().CreateMany(ctx, indexes)
	return err
}

func createTripRequestsIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tripId", Value: 1}, {Key: "requesterId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "requesterId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := db.Collection("trip_requests").Indexes().CreateMany(ctx, indexes)
	return err
}
