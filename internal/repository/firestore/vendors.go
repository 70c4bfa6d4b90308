package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
)

// ListVendors returns every vendor ordered by document id.
func (r *Repository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	it := r.col(vendorsCollection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)

	var out []models.Vendor
	err := drain(it, func(snap *firestore.DocumentSnapshot) error {
		v, err := decodeVendor(snap)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, wrapErr("list vendors", err)
	}
	return out, nil
}

// GetVendor loads one vendor.
func (r *Repository) GetVendor(ctx context.Context, id string) (models.Vendor, error) {
	snap, err := r.col(vendorsCollection).Doc(id).Get(ctx)
	if err != nil {
		return models.Vendor{}, wrapErr(fmt.Sprintf("get vendor %q", id), err)
	}
	v, err := decodeVendor(snap)
	if err != nil {
		return models.Vendor{}, wrapErr("decode vendor", err)
	}
	return v, nil
}

// FindVendorByUsername runs an equality query on username.
func (r *Repository) FindVendorByUsername(ctx context.Context, username string) (models.Vendor, error) {
	snaps, err := r.col(vendorsCollection).Where("username", "==", username).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return models.Vendor{}, wrapErr("find vendor by username", err)
	}
	if len(snaps) == 0 {
		return models.Vendor{}, fmt.Errorf("vendor username %q: %w", username, models.ErrNotFound)
	}
	v, err := decodeVendor(snaps[0])
	if err != nil {
		return models.Vendor{}, wrapErr("decode vendor", err)
	}
	return v, nil
}

// CreateVendor creates the document, failing on a taken id or username.
func (r *Repository) CreateVendor(ctx context.Context, vendor models.Vendor) error {
	ref := r.col(vendorsCollection).Doc(vendor.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.ensureUsernameFree(tx, vendor.Username, ""); err != nil {
			return err
		}
		return tx.Create(ref, vendorDocFromDomain(vendor))
	})
	return wrapErr("create vendor", err)
}

// UpdateVendor reads, mutates and writes the vendor inside a transaction.
func (r *Repository) UpdateVendor(ctx context.Context, id string, mutate repository.VendorMutation) (models.Vendor, error) {
	ref := r.col(vendorsCollection).Doc(id)

	var updated models.Vendor
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
			}
			return err
		}
		current, err := decodeVendor(snap)
		if err != nil {
			return err
		}

		next := current
		if err := mutate(&next); err != nil {
			return err
		}
		next.ID = id

		if next.Username != current.Username {
			if err := r.ensureUsernameFree(tx, next.Username, id); err != nil {
				return err
			}
		}

		updated = next
		return tx.Set(ref, vendorDocFromDomain(next))
	})
	if err != nil {
		return models.Vendor{}, wrapErr("update vendor", err)
	}
	return updated, nil
}

func (r *Repository) ensureUsernameFree(tx *firestore.Transaction, username, selfID string) error {
	q := r.col(vendorsCollection).Where("username", "==", username).Limit(2)
	snaps, err := tx.Documents(q).GetAll()
	if err != nil {
		return err
	}
	for _, s := range snaps {
		if s.Ref.ID != selfID {
			return fmt.Errorf("vendor username %q: %w", username, models.ErrConflict)
		}
	}
	return nil
}

// TouchVendor updates lastSeen only. Update fails with NotFound on a missing
// document.
func (r *Repository) TouchVendor(ctx context.Context, id string, at time.Time) error {
	_, err := r.col(vendorsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "lastSeen", Value: at},
	})
	return wrapErr(fmt.Sprintf("touch vendor %q", id), err)
}

// DeleteVendor removes the vendor and its activity subcollection.
func (r *Repository) DeleteVendor(ctx context.Context, id string) error {
	ref := r.col(vendorsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
			}
			return err
		}

		logs, err := tx.Documents(ref.Collection(vendorLogSubcollection)).GetAll()
		if err != nil {
			return err
		}
		for _, l := range logs {
			if err := tx.Delete(l.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	if err == nil {
		r.logger.Debug("vendor deleted", zap.String("vendor_id", id))
	}
	return wrapErr("delete vendor", err)
}

func decodeVendor(snap *firestore.DocumentSnapshot) (models.Vendor, error) {
	var d vendorDoc
	if err := snap.DataTo(&d); err != nil {
		return models.Vendor{}, err
	}
	return d.toDomain(snap.Ref.ID), nil
}
