package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

type vendorActivityDoc struct {
	models.ActivityLogEntry `bson:",inline"`
	VendorID                string `bson:"vendorId"`
}

// AppendGlobal inserts entry and deletes the oldest entries beyond max in the
// same transaction.
func (r *MongoDBRepository) AppendGlobal(ctx context.Context, entry models.ActivityLogEntry, max int) error {
	if max <= 0 {
		max = models.MaxActivityEntries
	}
	coll := r.db.Collection(activityCollection)

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := coll.InsertOne(sc, entry); err != nil {
			return err
		}

		count, err := coll.CountDocuments(sc, bson.M{})
		if err != nil {
			return err
		}
		excess := count - int64(max)
		if excess <= 0 {
			return nil
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}).
			SetLimit(excess).
			SetProjection(bson.M{"_id": 1})
		cursor, err := coll.Find(sc, bson.M{}, opts)
		if err != nil {
			return err
		}
		var oldest []struct {
			ID string `bson:"_id"`
		}
		if err := cursor.All(sc, &oldest); err != nil {
			return err
		}

		ids := make([]string, 0, len(oldest))
		for _, o := range oldest {
			ids = append(ids, o.ID)
		}
		_, err = coll.DeleteMany(sc, bson.M{"_id": bson.M{"$in": ids}})
		return err
	})
	return wrapErr("append global activity", err)
}

// ListGlobal returns up to limit entries, newest first.
func (r *MongoDBRepository) ListGlobal(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	var out []models.ActivityLogEntry
	if err := r.listActivity(ctx, activityCollection, bson.M{}, limit, &out); err != nil {
		return nil, wrapErr("list global activity", err)
	}
	return out, nil
}

// AppendVendor inserts an entry into the vendor's log.
func (r *MongoDBRepository) AppendVendor(ctx context.Context, vendorID string, entry models.ActivityLogEntry) error {
	n, err := r.vendors().CountDocuments(ctx, bson.M{"_id": vendorID})
	if err != nil {
		return wrapErr("append vendor activity", err)
	}
	if n == 0 {
		return fmt.Errorf("vendor %q: %w", vendorID, models.ErrNotFound)
	}

	doc := vendorActivityDoc{ActivityLogEntry: entry, VendorID: vendorID}
	if _, err := r.db.Collection(vendorActivityCollection).InsertOne(ctx, doc); err != nil {
		return wrapErr("append vendor activity", err)
	}
	return nil
}

// ListVendor returns up to limit entries of the vendor's log, newest first.
func (r *MongoDBRepository) ListVendor(ctx context.Context, vendorID string, limit int) ([]models.ActivityLogEntry, error) {
	var docs []vendorActivityDoc
	if err := r.listActivity(ctx, vendorActivityCollection, bson.M{"vendorId": vendorID}, limit, &docs); err != nil {
		return nil, wrapErr("list vendor activity", err)
	}

	out := make([]models.ActivityLogEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ActivityLogEntry)
	}
	return out, nil
}

func (r *MongoDBRepository) listActivity(ctx context.Context, coll string, filter bson.M, limit int, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
