package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// AppendGlobal creates the entry and deletes the oldest documents beyond max
// inside one transaction, so concurrent writers cannot over-prune.
func (r *Repository) AppendGlobal(ctx context.Context, entry models.ActivityLogEntry, max int) error {
	if max <= 0 {
		max = models.MaxActivityEntries
	}
	coll := r.col(activityCollection)
	ref := coll.Doc(entry.ID)

	var pruned int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(coll.OrderBy("timestamp", firestore.Asc)).GetAll()
		if err != nil {
			return err
		}

		if err := tx.Create(ref, activityDocFromDomain(entry)); err != nil {
			return err
		}

		pruned = excessCount(len(existing), max)
		for _, doc := range existing[:pruned] {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapErr("append global activity", err)
	}
	if pruned > 0 {
		r.logger.Debug("pruned global activity log", zap.Int("removed", pruned))
	}
	return nil
}

// excessCount is how many of the existing entries must go so that one more
// fits under max.
func excessCount(existing, max int) int {
	n := existing + 1 - max
	if n < 0 {
		return 0
	}
	return min(n, existing)
}

// ListGlobal returns up to limit entries, newest first.
func (r *Repository) ListGlobal(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	out, err := r.listActivity(ctx, r.col(activityCollection), limit)
	if err != nil {
		return nil, wrapErr("list global activity", err)
	}
	return out, nil
}

// AppendVendor writes into vendors/{id}/activityLog.
func (r *Repository) AppendVendor(ctx context.Context, vendorID string, entry models.ActivityLogEntry) error {
	vendorRef := r.col(vendorsCollection).Doc(vendorID)
	if _, err := vendorRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("vendor %q: %w", vendorID, models.ErrNotFound)
		}
		return wrapErr("append vendor activity", err)
	}

	_, err := vendorRef.Collection(vendorLogSubcollection).Doc(entry.ID).Set(ctx, activityDocFromDomain(entry))
	return wrapErr("append vendor activity", err)
}

// ListVendor returns up to limit entries of a vendor's log, newest first.
func (r *Repository) ListVendor(ctx context.Context, vendorID string, limit int) ([]models.ActivityLogEntry, error) {
	coll := r.col(vendorsCollection).Doc(vendorID).Collection(vendorLogSubcollection)
	out, err := r.listActivity(ctx, coll, limit)
	if err != nil {
		return nil, wrapErr("list vendor activity", err)
	}
	return out, nil
}

func (r *Repository) listActivity(ctx context.Context, coll *firestore.CollectionRef, limit int) ([]models.ActivityLogEntry, error) {
	q := coll.OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []models.ActivityLogEntry{}
	err := drain(q.Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		var d activityDoc
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		out = append(out, d.toDomain(snap.Ref.ID))
		return nil
	})
	return out, err
}
