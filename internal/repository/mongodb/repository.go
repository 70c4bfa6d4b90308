package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
)

const (
	vendorsCollection        = "vendors"
	catalogCollection        = "fish_catalog"
	settingsCollection       = "settings"
	activityCollection       = "activity_logs"
	vendorActivityCollection = "vendor_activity_logs"

	fishStatusID = "fishStatus"
)

var _ repository.Store = (*MongoDBRepository)(nil)

// MongoDBRepository implements repository.Store for MongoDB. Multi-document
// operations use transactions, so the deployment must be a replica set.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository connects, pings and makes sure the indexes exist.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		vendorsCollection: {
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		activityCollection: {
			Keys: bson.D{{Key: "timestamp", Value: 1}},
		},
		vendorActivityCollection: {
			Keys: bson.D{{Key: "vendorId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}
	for coll, model := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll, err)
		}
	}
	return nil
}

// Ping checks the connection.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// withTransaction runs fn inside a session transaction and returns its error.
func (r *MongoDBRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// wrapErr passes domain errors through and classifies driver errors.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrValidation):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
	}
}
