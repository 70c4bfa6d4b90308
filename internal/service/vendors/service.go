// Package vendors implements the stall owner's operations and the quantity
// reports pushed by stall devices.
package vendors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
)

// VendorStore is the vendor persistence the service needs.
type VendorStore interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendor(ctx context.Context, id string) (models.Vendor, error)
	UpdateVendor(ctx context.Context, id string, mutate repository.VendorMutation) (models.Vendor, error)
	TouchVendor(ctx context.Context, id string, at time.Time) error
}

// CatalogReader reads the fish catalog.
type CatalogReader interface {
	ListCatalog(ctx context.Context) ([]models.CatalogFish, error)
	GetFish(ctx context.Context, name string) (models.CatalogFish, error)
}

// SettingsReader returns the disabled fish list.
type SettingsReader interface {
	DisabledFish(ctx context.Context) ([]string, error)
}

// ActivityLog is the per-vendor log.
type ActivityLog interface {
	AppendVendor(ctx context.Context, vendorID string, entry models.ActivityLogEntry) error
	ListVendor(ctx context.Context, vendorID string, limit int) ([]models.ActivityLogEntry, error)
}

// Service implements vendor operations.
type Service struct {
	vendors  VendorStore
	catalog  CatalogReader
	settings SettingsReader
	activity ActivityLog
	engine   *availability.Engine
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a vendor service.
func NewService(vendors VendorStore, catalog CatalogReader, settings SettingsReader, activity ActivityLog, engine *availability.Engine, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		vendors:  vendors,
		catalog:  catalog,
		settings: settings,
		activity: activity,
		engine:   engine,
		now:      now,
		logger:   logger.Named("svc.vendors"),
	}
}

// StallView is the vendor's own dashboard.
type StallView struct {
	Vendor models.Vendor                 `json:"vendor"`
	Online bool                          `json:"online"`
	Stock  []models.NormalizedStockEntry `json:"stock"`
}

// Heartbeat marks the vendor as present now.
func (s *Service) Heartbeat(ctx context.Context, vendorID string) (time.Time, error) {
	now := s.now()
	if err := s.vendors.TouchVendor(ctx, vendorID, now); err != nil {
		return time.Time{}, fmt.Errorf("heartbeat: %w", err)
	}
	return now, nil
}

// Stall returns the vendor record with normalized stock. Disabled fish are
// hidden and entries missing from the catalog are flagged.
func (s *Service) Stall(ctx context.Context, vendorID string) (StallView, error) {
	vendor, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return StallView{}, fmt.Errorf("load vendor: %w", err)
	}
	catalog, err := s.catalog.ListCatalog(ctx)
	if err != nil {
		return StallView{}, fmt.Errorf("load catalog: %w", err)
	}
	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return StallView{}, fmt.Errorf("load fish status: %w", err)
	}

	now := s.now()
	stock := availability.VisibleStock(s.engine.Normalize(vendor, now), disabled)
	return StallView{
		Vendor: vendor,
		Online: s.engine.IsOnline(vendor.LastSeen, now),
		Stock:  availability.MarkOrphans(stock, catalog),
	}, nil
}

// UpdateSettings replaces the stall display fields.
func (s *Service) UpdateSettings(ctx context.Context, vendorID string, settings models.StallSettings) (models.Vendor, error) {
	settings.StallName = strings.TrimSpace(settings.StallName)
	settings.Location = strings.TrimSpace(settings.Location)
	settings.StallContact = strings.TrimSpace(settings.StallContact)
	settings.StallHours = strings.TrimSpace(settings.StallHours)

	if settings.StallName == "" || settings.Location == "" {
		return models.Vendor{}, fmt.Errorf("stall name and location are required: %w", models.ErrValidation)
	}
	if settings.StallHours != "" {
		if _, _, err := models.ParseStallHours(settings.StallHours); err != nil {
			return models.Vendor{}, err
		}
	}

	now := s.now()
	updated, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		v.StallName = settings.StallName
		v.Location = settings.Location
		v.StallContact = settings.StallContact
		v.StallHours = settings.StallHours
		v.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("update settings: %w", err)
	}

	s.record(ctx, updated, models.ActionUpdateSettings, fmt.Sprintf("%s, %s", updated.StallName, updated.Location))
	return updated, nil
}

// AddFish lists a catalog fish at the stall. The quantity stays unknown until
// the stall device reports it.
func (s *Service) AddFish(ctx context.Context, vendorID, fishName string, price float64) (models.Vendor, error) {
	name, err := models.NormalizeFishName(fishName)
	if err != nil {
		return models.Vendor{}, err
	}
	if err := models.ValidatePrice(price); err != nil {
		return models.Vendor{}, err
	}

	if _, err := s.catalog.GetFish(ctx, name); err != nil {
		return models.Vendor{}, fmt.Errorf("fish %q is not in the catalog: %w", name, err)
	}
	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return models.Vendor{}, fmt.Errorf("load fish status: %w", err)
	}
	if availability.IsDisabled(name, disabled) {
		return models.Vendor{}, fmt.Errorf("fish %q is disabled: %w", name, models.ErrValidation)
	}

	now := s.now()
	updated, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		if v.FindStock(name) >= 0 {
			return fmt.Errorf("fish %q already listed: %w", name, models.ErrConflict)
		}
		v.FishList = append(v.FishList, models.StockEntry{Name: name, Price: price})
		v.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("add fish: %w", err)
	}

	s.record(ctx, updated, models.ActionAddFish, fmt.Sprintf("%s at %.2f", name, price))
	return updated, nil
}

// RemoveFish deletes a stall entry.
func (s *Service) RemoveFish(ctx context.Context, vendorID, fishName string) (models.Vendor, error) {
	now := s.now()
	updated, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		i := v.FindStock(fishName)
		if i < 0 {
			return fmt.Errorf("fish %q not listed: %w", fishName, models.ErrNotFound)
		}
		v.FishList = append(v.FishList[:i], v.FishList[i+1:]...)
		v.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("remove fish: %w", err)
	}

	s.record(ctx, updated, models.ActionDeleteFish, fishName)
	return updated, nil
}

// UpdatePrice changes an entry's price and leaves its quantity untouched.
func (s *Service) UpdatePrice(ctx context.Context, vendorID, fishName string, price float64) (models.Vendor, error) {
	if err := models.ValidatePrice(price); err != nil {
		return models.Vendor{}, err
	}

	var previous float64
	now := s.now()
	updated, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		i := v.FindStock(fishName)
		if i < 0 {
			return fmt.Errorf("fish %q not listed: %w", fishName, models.ErrNotFound)
		}
		previous = v.FishList[i].Price
		v.FishList[i].Price = price
		v.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("update price: %w", err)
	}

	s.record(ctx, updated, models.ActionUpdatePrice, fmt.Sprintf("%s: %.2f -> %.2f", fishName, previous, price))
	return updated, nil
}

// ReportQuantity stores a device reading for an existing stall entry.
func (s *Service) ReportQuantity(ctx context.Context, vendorID, fishName string, qty int) (models.StockEntry, error) {
	if err := models.ValidateQuantity(qty); err != nil {
		return models.StockEntry{}, err
	}

	var entry models.StockEntry
	now := s.now()
	_, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		i := v.FindStock(fishName)
		if i < 0 {
			return fmt.Errorf("fish %q not listed: %w", fishName, models.ErrNotFound)
		}
		v.FishList[i].Quantity = models.IntPtr(qty)
		v.FishList[i].QuantityReportedAt = &now
		entry = v.FishList[i]
		return nil
	})
	if err != nil {
		return models.StockEntry{}, fmt.Errorf("report quantity: %w", err)
	}

	s.logger.Debug("quantity reported",
		zap.String("vendor_id", vendorID),
		zap.String("fish", fishName),
		zap.Int("quantity", qty),
	)
	return entry, nil
}

// Activity returns the most recent vendor log entries.
func (s *Service) Activity(ctx context.Context, vendorID string) ([]models.ActivityLogEntry, error) {
	entries, err := s.activity.ListVendor(ctx, vendorID, models.MaxActivityEntries)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	return entries, nil
}

// AddableCatalog lists visible catalog fish the stall does not list yet.
func (s *Service) AddableCatalog(ctx context.Context, vendorID string) ([]models.CatalogFish, error) {
	vendor, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("load vendor: %w", err)
	}
	catalog, err := s.catalog.ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fish status: %w", err)
	}

	out := []models.CatalogFish{}
	for _, fish := range availability.VisibleCatalog(catalog, disabled) {
		if vendor.FindStock(fish.Name) < 0 {
			out = append(out, fish)
		}
	}
	return out, nil
}

// StartSession opens a selling session. Starting an open session is a no-op.
func (s *Service) StartSession(ctx context.Context, vendorID string) (models.Vendor, error) {
	now := s.now()
	changed := false
	updated, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		if v.Session.Active {
			return nil
		}
		v.Session = models.VendorSession{Active: true, Start: &now}
		v.LastSeen = &now
		changed = true
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("start session: %w", err)
	}

	if changed {
		s.record(ctx, updated, models.ActionSessionStart, "")
	}
	return updated, nil
}

// EndSession closes the selling session. Ending a closed session is a no-op.
func (s *Service) EndSession(ctx context.Context, vendorID string) (models.Vendor, error) {
	changed := false
	var started *time.Time
	updated, err := s.vendors.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		if !v.Session.Active {
			return nil
		}
		started = v.Session.Start
		v.Session = models.VendorSession{}
		changed = true
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("end session: %w", err)
	}

	if changed {
		s.record(ctx, updated, models.ActionSessionEnd, sessionLength(started, s.now()))
	}
	return updated, nil
}

// CloseStaleSessions ends the sessions of vendors that are no longer online
// and returns how many were closed.
func (s *Service) CloseStaleSessions(ctx context.Context) (int, error) {
	vendors, err := s.vendors.ListVendors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list vendors: %w", err)
	}

	now := s.now()
	closed := 0
	for _, candidate := range vendors {
		if !candidate.Session.Active || s.engine.IsOnline(candidate.LastSeen, now) {
			continue
		}

		changed := false
		var started *time.Time
		updated, err := s.vendors.UpdateVendor(ctx, candidate.ID, func(v *models.Vendor) error {
			if !v.Session.Active || s.engine.IsOnline(v.LastSeen, now) {
				return nil
			}
			started = v.Session.Start
			v.Session = models.VendorSession{}
			changed = true
			return nil
		})
		if err != nil {
			s.logger.Warn("failed to close stale session", zap.String("vendor_id", candidate.ID), zap.Error(err))
			continue
		}
		if changed {
			closed++
			s.record(ctx, updated, models.ActionSessionClosed, "closed after going offline, "+sessionLength(started, now))
		}
	}
	return closed, nil
}

// record appends to the vendor log. A log failure does not undo the action.
func (s *Service) record(ctx context.Context, vendor models.Vendor, action, details string) {
	entry := models.ActivityLogEntry{
		ID:        uuid.NewString(),
		Actor:     vendor.Username,
		Action:    action,
		Details:   details,
		Timestamp: s.now(),
	}
	if err := s.activity.AppendVendor(ctx, vendor.ID, entry); err != nil {
		s.logger.Warn("failed to append vendor activity",
			zap.String("vendor_id", vendor.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func sessionLength(start *time.Time, end time.Time) string {
	if start == nil {
		return "duration unknown"
	}
	return "lasted " + end.Sub(*start).Round(time.Minute).String()
}
