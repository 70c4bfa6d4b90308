// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps every collection in maps guarded by one lock. Values are copied
// on the way in and out so callers never share state with the store.
type Store struct {
	mu         sync.RWMutex
	vendors    map[string]models.Vendor
	catalog    map[string]models.CatalogFish
	disabled   []string
	global     []models.ActivityLogEntry
	vendorLogs map[string][]models.ActivityLogEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		vendors:    make(map[string]models.Vendor),
		catalog:    make(map[string]models.CatalogFish),
		vendorLogs: make(map[string][]models.ActivityLogEntry),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// ListVendors returns every vendor ordered by id.
func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, cloneVendor(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetVendor returns one vendor.
func (s *Store) GetVendor(ctx context.Context, id string) (models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vendors[id]
	if !ok {
		return models.Vendor{}, fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
	}
	return cloneVendor(v), nil
}

// FindVendorByUsername looks a vendor up by login name.
func (s *Store) FindVendorByUsername(ctx context.Context, username string) (models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.vendors {
		if v.Username == username {
			return cloneVendor(v), nil
		}
	}
	return models.Vendor{}, fmt.Errorf("vendor username %q: %w", username, models.ErrNotFound)
}

// CreateVendor inserts a vendor. Ids and usernames are unique.
func (s *Store) CreateVendor(ctx context.Context, vendor models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vendors[vendor.ID]; ok {
		return fmt.Errorf("vendor %q: %w", vendor.ID, models.ErrConflict)
	}
	for _, v := range s.vendors {
		if v.Username == vendor.Username {
			return fmt.Errorf("vendor username %q: %w", vendor.Username, models.ErrConflict)
		}
	}
	s.vendors[vendor.ID] = cloneVendor(vendor)
	return nil
}

// UpdateVendor applies mutate to a copy of the vendor and stores the result.
func (s *Store) UpdateVendor(ctx context.Context, id string, mutate repository.VendorMutation) (models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vendors[id]
	if !ok {
		return models.Vendor{}, fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
	}

	next := cloneVendor(current)
	if err := mutate(&next); err != nil {
		return models.Vendor{}, err
	}
	next.ID = id

	if next.Username != current.Username {
		for otherID, v := range s.vendors {
			if otherID != id && v.Username == next.Username {
				return models.Vendor{}, fmt.Errorf("vendor username %q: %w", next.Username, models.ErrConflict)
			}
		}
	}

	s.vendors[id] = next
	return cloneVendor(next), nil
}

// TouchVendor records a heartbeat.
func (s *Store) TouchVendor(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vendors[id]
	if !ok {
		return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
	}
	v.LastSeen = &at
	s.vendors[id] = v
	return nil
}

// DeleteVendor removes a vendor and its activity log.
func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vendors[id]; !ok {
		return fmt.Errorf("vendor %q: %w", id, models.ErrNotFound)
	}
	delete(s.vendors, id)
	delete(s.vendorLogs, id)
	return nil
}

// ListCatalog returns the catalog ordered by name.
func (s *Store) ListCatalog(ctx context.Context) ([]models.CatalogFish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CatalogFish, 0, len(s.catalog))
	for _, f := range s.catalog {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetFish returns one catalog entry.
func (s *Store) GetFish(ctx context.Context, name string) (models.CatalogFish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.catalog[name]
	if !ok {
		return models.CatalogFish{}, fmt.Errorf("fish %q: %w", name, models.ErrNotFound)
	}
	return f, nil
}

// CreateFish adds a catalog entry.
func (s *Store) CreateFish(ctx context.Context, fish models.CatalogFish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[fish.Name]; ok {
		return fmt.Errorf("fish %q: %w", fish.Name, models.ErrConflict)
	}
	s.catalog[fish.Name] = fish
	return nil
}

// UpdateFish renames and/or re-images a catalog entry, keeping its other fields.
func (s *Store) UpdateFish(ctx context.Context, oldName, newName, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.catalog[oldName]
	if !ok {
		return fmt.Errorf("fish %q: %w", oldName, models.ErrNotFound)
	}
	if newName != oldName {
		if _, taken := s.catalog[newName]; taken {
			return fmt.Errorf("fish %q: %w", newName, models.ErrConflict)
		}
	}
	if image != "" {
		f.Image = image
	}
	delete(s.catalog, oldName)
	f.Name = newName
	s.catalog[newName] = f
	return nil
}

// DeleteFish removes a catalog entry.
func (s *Store) DeleteFish(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[name]; !ok {
		return fmt.Errorf("fish %q: %w", name, models.ErrNotFound)
	}
	delete(s.catalog, name)
	return nil
}

// DisabledFish returns the disabled names.
func (s *Store) DisabledFish(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.disabled))
	copy(out, s.disabled)
	return out, nil
}

// SetFishDisabled adds or removes name from the disabled list.
func (s *Store) SetFishDisabled(ctx context.Context, name string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.disabled[:0:0]
	for _, d := range s.disabled {
		if d != name {
			kept = append(kept, d)
		}
	}
	if disabled {
		kept = append(kept, name)
	}
	s.disabled = kept
	return nil
}

// AppendGlobal appends and prunes under the store lock.
func (s *Store) AppendGlobal(ctx context.Context, entry models.ActivityLogEntry, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.global = models.AppendAndPrune(s.global, entry, max)
	return nil
}

// ListGlobal returns up to limit entries, newest first.
func (s *Store) ListGlobal(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.global, limit), nil
}

// AppendVendor appends to a vendor's log without pruning.
func (s *Store) AppendVendor(ctx context.Context, vendorID string, entry models.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vendors[vendorID]; !ok {
		return fmt.Errorf("vendor %q: %w", vendorID, models.ErrNotFound)
	}
	s.vendorLogs[vendorID] = append(s.vendorLogs[vendorID], entry)
	return nil
}

// ListVendor returns up to limit entries of a vendor's log, newest first.
func (s *Store) ListVendor(ctx context.Context, vendorID string, limit int) ([]models.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.vendorLogs[vendorID], limit), nil
}

func newestFirst(log []models.ActivityLogEntry, limit int) []models.ActivityLogEntry {
	out := make([]models.ActivityLogEntry, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, log[i])
	}
	return out
}

func cloneVendor(v models.Vendor) models.Vendor {
	out := v
	if v.LastSeen != nil {
		t := *v.LastSeen
		out.LastSeen = &t
	}
	if v.Session.Start != nil {
		t := *v.Session.Start
		out.Session.Start = &t
	}
	if v.FishList != nil {
		out.FishList = make([]models.StockEntry, len(v.FishList))
		for i, e := range v.FishList {
			if e.Quantity != nil {
				q := *e.Quantity
				e.Quantity = &q
			}
			if e.QuantityReportedAt != nil {
				t := *e.QuantityReportedAt
				e.QuantityReportedAt = &t
			}
			out.FishList[i] = e
		}
	}
	return out
}
