package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
)

func (r *MongoDBRepository) vendors() *mongo.Collection {
	return r.db.Collection(vendorsCollection)
}

// ListVendors returns every vendor ordered by id.
func (r *MongoDBRepository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.vendors().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapErr("list vendors", err)
	}

	var out []models.Vendor
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrapErr("decode vendors", err)
	}
	return out, nil
}

// GetVendor loads one vendor by id.
func (r *MongoDBRepository) GetVendor(ctx context.Context, id string) (models.Vendor, error) {
	return r.findVendor(ctx, "get vendor", bson.M{"_id": id})
}

// FindVendorByUsername loads one vendor by login name.
func (r *MongoDBRepository) FindVendorByUsername(ctx context.Context, username string) (models.Vendor, error) {
	return r.findVendor(ctx, "find vendor by username", bson.M{"username": username})
}

func (r *MongoDBRepository) findVendor(ctx context.Context, op string, filter bson.M) (models.Vendor, error) {
	var v models.Vendor
	if err := r.vendors().FindOne(ctx, filter).Decode(&v); err != nil {
		return models.Vendor{}, wrapErr(op, err)
	}
	return v, nil
}

// CreateVendor inserts a vendor. The unique username index reports conflicts.
func (r *MongoDBRepository) CreateVendor(ctx context.Context, vendor models.Vendor) error {
	if _, err := r.vendors().InsertOne(ctx, vendor); err != nil {
		return wrapErr("create vendor", err)
	}
	return nil
}

// UpdateVendor reads, mutates and replaces the vendor in one transaction.
func (r *MongoDBRepository) UpdateVendor(ctx context.Context, id string, mutate repository.VendorMutation) (models.Vendor, error) {
	var updated models.Vendor
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var v models.Vendor
		if err := r.vendors().FindOne(sc, bson.M{"_id": id}).Decode(&v); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
			}
			return err
		}

		if err := mutate(&v); err != nil {
			return err
		}
		v.ID = id

		if _, err := r.vendors().ReplaceOne(sc, bson.M{"_id": id}, v); err != nil {
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return models.Vendor{}, wrapErr("update vendor", err)
	}
	return updated, nil
}

// TouchVendor records a heartbeat without rewriting the document.
func (r *MongoDBRepository) TouchVendor(ctx context.Context, id string, at time.Time) error {
	res, err := r.vendors().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastSeen": at}})
	if err != nil {
		return wrapErr("touch vendor", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
	}
	return nil
}

// DeleteVendor removes the vendor and its activity log.
func (r *MongoDBRepository) DeleteVendor(ctx context.Context, id string) error {
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.vendors().DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
		}
		_, err = r.db.Collection(vendorActivityCollection).DeleteMany(sc, bson.M{"vendorId": id})
		return err
	})
	return wrapErr("delete vendor", err)
}
