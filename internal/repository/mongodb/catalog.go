package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

func (r *MongoDBRepository) catalog() *mongo.Collection {
	return r.db.Collection(catalogCollection)
}

// ListCatalog returns the catalog ordered by name.
func (r *MongoDBRepository) ListCatalog(ctx context.Context) ([]models.CatalogFish, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.catalog().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapErr("list catalog", err)
	}

	var out []models.CatalogFish
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrapErr("decode catalog", err)
	}
	return out, nil
}

// GetFish loads one catalog entry.
func (r *MongoDBRepository) GetFish(ctx context.Context, name string) (models.CatalogFish, error) {
	var f models.CatalogFish
	if err := r.catalog().FindOne(ctx, bson.M{"_id": name}).Decode(&f); err != nil {
		return models.CatalogFish{}, wrapErr("get fish", err)
	}
	return f, nil
}

// CreateFish inserts a catalog entry keyed by name.
func (r *MongoDBRepository) CreateFish(ctx context.Context, fish models.CatalogFish) error {
	if _, err := r.catalog().InsertOne(ctx, fish); err != nil {
		return wrapErr("create fish", err)
	}
	return nil
}

// UpdateFish rewrites the entry under newName and deletes the old document in
// a single transaction.
func (r *MongoDBRepository) UpdateFish(ctx context.Context, oldName, newName, image string) error {
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var f models.CatalogFish
		if err := r.catalog().FindOne(sc, bson.M{"_id": oldName}).Decode(&f); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("fish %q: %w", oldName, models.ErrNotFound)
			}
			return err
		}
		if image != "" {
			f.Image = image
		}

		if newName == oldName {
			_, err := r.catalog().ReplaceOne(sc, bson.M{"_id": oldName}, f)
			return err
		}

		f.Name = newName
		if _, err := r.catalog().InsertOne(sc, f); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("fish %q: %w", newName, models.ErrConflict)
			}
			return err
		}

		_, err := r.catalog().DeleteOne(sc, bson.M{"_id": oldName})
		return err
	})
	return wrapErr("update fish", err)
}

// DeleteFish removes a catalog entry.
func (r *MongoDBRepository) DeleteFish(ctx context.Context, name string) error {
	res, err := r.catalog().DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return wrapErr("delete fish", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("fish %q: %w", name, models.ErrNotFound)
	}
	return nil
}

// DisabledFish reads the fishStatus settings document.
func (r *MongoDBRepository) DisabledFish(ctx context.Context) ([]string, error) {
	var s models.FishStatusSettings
	err := r.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": fishStatusID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, wrapErr("get fish status", err)
	}
	if s.DisabledFish == nil {
		return []string{}, nil
	}
	return s.DisabledFish, nil
}

// SetFishDisabled adds or removes name from the disabled set, creating the
// settings document if needed.
func (r *MongoDBRepository) SetFishDisabled(ctx context.Context, name string, disabled bool) error {
	op := "$pull"
	if disabled {
		op = "$addToSet"
	}
	update := bson.M{op: bson.M{"disabledFish": name}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.db.Collection(settingsCollection).UpdateOne(ctx, bson.M{"_id": fishStatusID}, update, opts); err != nil {
		return wrapErr("set fish status", err)
	}
	return nil
}
