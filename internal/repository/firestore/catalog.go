package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// ListCatalog returns the catalog ordered by name.
func (r *Repository) ListCatalog(ctx context.Context) ([]models.CatalogFish, error) {
	it := r.col(catalogCollection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)

	var out []models.CatalogFish
	err := drain(it, func(snap *firestore.DocumentSnapshot) error {
		f, err := decodeFish(snap)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, wrapErr("list catalog", err)
	}
	return out, nil
}

// GetFish loads one catalog entry.
func (r *Repository) GetFish(ctx context.Context, name string) (models.CatalogFish, error) {
	snap, err := r.col(catalogCollection).Doc(name).Get(ctx)
	if err != nil {
		return models.CatalogFish{}, wrapErr(fmt.Sprintf("get fish %q", name), err)
	}
	f, err := decodeFish(snap)
	if err != nil {
		return models.CatalogFish{}, wrapErr("decode fish", err)
	}
	return f, nil
}

// CreateFish creates fishCatalog/{name}.
func (r *Repository) CreateFish(ctx context.Context, fish models.CatalogFish) error {
	_, err := r.col(catalogCollection).Doc(fish.Name).Create(ctx, catalogDoc{Image: fish.Image, CreatedAt: fish.CreatedAt})
	return wrapErr(fmt.Sprintf("create fish %q", fish.Name), err)
}

// UpdateFish copies the document to the new id and deletes the old one in a
// transaction. Without a rename it overwrites in place.
func (r *Repository) UpdateFish(ctx context.Context, oldName, newName, image string) error {
	oldRef := r.col(catalogCollection).Doc(oldName)
	newRef := r.col(catalogCollection).Doc(newName)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(oldRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("fish %q: %w", oldName, models.ErrNotFound)
			}
			return err
		}
		var doc catalogDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if image != "" {
			doc.Image = image
		}

		if newName == oldName {
			return tx.Set(oldRef, doc)
		}

		if existing, err := tx.Get(newRef); err == nil && existing.Exists() {
			return fmt.Errorf("fish %q: %w", newName, models.ErrConflict)
		} else if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(newRef, doc); err != nil {
			return err
		}
		return tx.Delete(oldRef)
	})
	return wrapErr("update fish", err)
}

// DeleteFish removes a catalog entry.
func (r *Repository) DeleteFish(ctx context.Context, name string) error {
	ref := r.col(catalogCollection).Doc(name)
	_, err := ref.Delete(ctx, firestore.Exists)
	return wrapErr(fmt.Sprintf("delete fish %q", name), err)
}

// DisabledFish reads settings/fishStatus.
func (r *Repository) DisabledFish(ctx context.Context) ([]string, error) {
	snap, err := r.col(settingsCollection).Doc(fishStatusDoc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, wrapErr("get fish status", err)
	}

	var doc fishStatusDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, wrapErr("decode fish status", err)
	}
	if doc.DisabledFish == nil {
		return []string{}, nil
	}
	return doc.DisabledFish, nil
}

// SetFishDisabled merges an array union or removal into settings/fishStatus.
func (r *Repository) SetFishDisabled(ctx context.Context, name string, disabled bool) error {
	var value interface{} = firestore.ArrayRemove(name)
	if disabled {
		value = firestore.ArrayUnion(name)
	}

	_, err := r.col(settingsCollection).Doc(fishStatusDoc).Set(ctx, map[string]interface{}{
		"disabledFish": value,
	}, firestore.MergeAll)
	return wrapErr("set fish status", err)
}

func decodeFish(snap *firestore.DocumentSnapshot) (models.CatalogFish, error) {
	var d catalogDoc
	if err := snap.DataTo(&d); err != nil {
		return models.CatalogFish{}, err
	}
	return models.CatalogFish{Name: snap.Ref.ID, Image: d.Image, CreatedAt: d.CreatedAt}, nil
}
