// Package repository declares the storage contracts shared by every backend.
// Implementations return errors wrapping models.ErrNotFound, models.ErrConflict
// or models.ErrStoreUnavailable so services can map them without knowing the
// backend.
package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// VendorMutation edits a vendor record in place. Returning an error aborts the
// write and the error is passed through unchanged.
type VendorMutation func(v *models.Vendor) error

// VendorRepository stores vendor records including their fish lists.
type VendorRepository interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendor(ctx context.Context, id string) (models.Vendor, error)
	FindVendorByUsername(ctx context.Context, username string) (models.Vendor, error)
	CreateVendor(ctx context.Context, vendor models.Vendor) error
	UpdateVendor(ctx context.Context, id string, mutate VendorMutation) (models.Vendor, error)
	TouchVendor(ctx context.Context, id string, at time.Time) error
	DeleteVendor(ctx context.Context, id string) error
}

// CatalogRepository stores the admin-curated fish catalog.
type CatalogRepository interface {
	ListCatalog(ctx context.Context) ([]models.CatalogFish, error)
	GetFish(ctx context.Context, name string) (models.CatalogFish, error)
	CreateFish(ctx context.Context, fish models.CatalogFish) error
	// UpdateFish renames and/or re-images a fish. An empty image keeps the
	// current one.
	UpdateFish(ctx context.Context, oldName, newName, image string) error
	DeleteFish(ctx context.Context, name string) error
}

// SettingsRepository stores the disabled fish list. A missing settings
// document reads as an empty list.
type SettingsRepository interface {
	DisabledFish(ctx context.Context) ([]string, error)
	SetFishDisabled(ctx context.Context, name string, disabled bool) error
}

// ActivityRepository stores the global and per-vendor activity logs. List
// methods return newest entries first.
type ActivityRepository interface {
	// AppendGlobal appends entry and prunes the global log to max entries as
	// one atomic operation.
	AppendGlobal(ctx context.Context, entry models.ActivityLogEntry, max int) error
	ListGlobal(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
	AppendVendor(ctx context.Context, vendorID string, entry models.ActivityLogEntry) error
	ListVendor(ctx context.Context, vendorID string, limit int) ([]models.ActivityLogEntry, error)
}

// Store is a complete backend.
type Store interface {
	VendorRepository
	CatalogRepository
	SettingsRepository
	ActivityRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
