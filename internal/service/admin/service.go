// Package admin implements vendor roster and fish catalog management. Every
// mutation is recorded in the bounded global activity log.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
	"github.com/mamadbah2/fishtrace/internal/service/auth"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
)

// SessionRevoker drops the sessions of a deleted vendor.
type SessionRevoker interface {
	RevokeVendor(vendorID string)
}

// Store is the persistence the admin service needs.
type Store interface {
	repository.VendorRepository
	repository.CatalogRepository
	repository.SettingsRepository
	AppendGlobal(ctx context.Context, entry models.ActivityLogEntry, max int) error
	ListGlobal(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
}

// Service implements admin operations.
type Service struct {
	store   Store
	revoker SessionRevoker
	engine  *availability.Engine
	now     func() time.Time
	logger  *zap.Logger
}

// NewService wires an admin service. revoker may be nil.
func NewService(store Store, revoker SessionRevoker, engine *availability.Engine, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   store,
		revoker: revoker,
		engine:  engine,
		now:     now,
		logger:  logger.Named("svc.admin"),
	}
}

// VendorView is a vendor as listed to admins.
type VendorView struct {
	models.Vendor
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

// FishView is a catalog entry with its disabled marker and current stock.
type FishView struct {
	models.AnnotatedFish
	TotalQuantity int                 `json:"totalQuantity"`
	Availability  models.Availability `json:"status"`
	ListingCount  int                 `json:"listingCount"`
}

// CatalogView is the admin fish tab.
type CatalogView struct {
	Fish   []FishView `json:"fish"`
	Notice string     `json:"notice,omitempty"`
}

// Vendors lists every vendor with its online flag.
func (s *Service) Vendors(ctx context.Context) ([]VendorView, error) {
	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	now := s.now()
	out := make([]VendorView, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, VendorView{Vendor: v, Username: v.Username, Online: s.engine.IsOnline(v.LastSeen, now)})
	}
	return out, nil
}

// CreateVendor registers a vendor with a hashed password.
func (s *Service) CreateVendor(ctx context.Context, actor string, profile models.VendorProfile) (models.Vendor, error) {
	profile = trimProfile(profile)
	if profile.StallName == "" || profile.Location == "" || profile.Username == "" || profile.Password == "" {
		return models.Vendor{}, fmt.Errorf("stall name, location, username and password are required: %w", models.ErrValidation)
	}

	hash, err := auth.HashPassword(profile.Password)
	if err != nil {
		return models.Vendor{}, err
	}

	now := s.now()
	vendor := models.Vendor{
		ID:           uuid.NewString(),
		StallName:    profile.StallName,
		Location:     profile.Location,
		Username:     profile.Username,
		PasswordHash: hash,
		FishList:     []models.StockEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateVendor(ctx, vendor); err != nil {
		return models.Vendor{}, fmt.Errorf("create vendor: %w", err)
	}

	s.record(ctx, actor, models.ActionAddVendor, fmt.Sprintf("%s (%s)", vendor.StallName, vendor.Username))
	return vendor, nil
}

// UpdateVendor edits a vendor's profile. An empty password keeps the current one.
func (s *Service) UpdateVendor(ctx context.Context, actor, vendorID string, profile models.VendorProfile) (models.Vendor, error) {
	profile = trimProfile(profile)
	if profile.StallName == "" || profile.Location == "" || profile.Username == "" {
		return models.Vendor{}, fmt.Errorf("stall name, location and username are required: %w", models.ErrValidation)
	}

	var hash string
	if profile.Password != "" {
		h, err := auth.HashPassword(profile.Password)
		if err != nil {
			return models.Vendor{}, err
		}
		hash = h
	}

	now := s.now()
	updated, err := s.store.UpdateVendor(ctx, vendorID, func(v *models.Vendor) error {
		v.StallName = profile.StallName
		v.Location = profile.Location
		v.Username = profile.Username
		if hash != "" {
			v.PasswordHash = hash
		}
		v.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Vendor{}, fmt.Errorf("update vendor: %w", err)
	}

	s.record(ctx, actor, models.ActionUpdateVendor, updated.StallName)
	return updated, nil
}

// DeleteVendor removes a vendor and revokes its sessions.
func (s *Service) DeleteVendor(ctx context.Context, actor, vendorID string) error {
	vendor, err := s.store.GetVendor(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("load vendor: %w", err)
	}
	if err := s.store.DeleteVendor(ctx, vendorID); err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	if s.revoker != nil {
		s.revoker.RevokeVendor(vendorID)
	}

	s.record(ctx, actor, models.ActionDeleteVendor, vendor.StallName)
	return nil
}

// Catalog lists every catalog fish, disabled ones included and marked, with
// current availability. A failed vendor fetch degrades to zero stock.
func (s *Service) Catalog(ctx context.Context) (CatalogView, error) {
	catalog, err := s.store.ListCatalog(ctx)
	if err != nil {
		return CatalogView{}, fmt.Errorf("list catalog: %w", err)
	}
	disabled, err := s.store.DisabledFish(ctx)
	if err != nil {
		return CatalogView{}, fmt.Errorf("load fish status: %w", err)
	}

	var notice string
	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		s.logger.Warn("vendor fetch failed, showing no stock", zap.Error(err))
		vendors, notice = nil, models.VendorNotice
	}

	annotated := availability.AnnotateCatalog(catalog, disabled)
	views := s.engine.AggregateCatalog(catalog, vendors, s.now())

	out := CatalogView{Fish: make([]FishView, 0, len(annotated)), Notice: notice}
	for i, fish := range annotated {
		out.Fish = append(out.Fish, FishView{
			AnnotatedFish: fish,
			TotalQuantity: views[i].TotalQuantity,
			Availability:  views[i].Availability,
			ListingCount:  views[i].ListingCount,
		})
	}
	return out, nil
}

// AddFish adds a catalog entry. Names are unique ignoring case.
func (s *Service) AddFish(ctx context.Context, actor, name, image string) (models.CatalogFish, error) {
	name, err := models.NormalizeFishName(name)
	if err != nil {
		return models.CatalogFish{}, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return models.CatalogFish{}, err
	}

	fish := models.CatalogFish{Name: name, Image: strings.TrimSpace(image), CreatedAt: s.now()}
	if err := s.store.CreateFish(ctx, fish); err != nil {
		return models.CatalogFish{}, fmt.Errorf("create fish: %w", err)
	}

	s.record(ctx, actor, models.ActionAddCatalog, name)
	return fish, nil
}

// UpdateFish renames a catalog entry and optionally replaces its image. Stall
// entries keep the old name.
func (s *Service) UpdateFish(ctx context.Context, actor, oldName, newName, image string) (models.CatalogFish, error) {
	newName, err := models.NormalizeFishName(newName)
	if err != nil {
		return models.CatalogFish{}, err
	}
	if err := s.ensureNameFree(ctx, newName, oldName); err != nil {
		return models.CatalogFish{}, err
	}

	if err := s.store.UpdateFish(ctx, oldName, newName, strings.TrimSpace(image)); err != nil {
		return models.CatalogFish{}, fmt.Errorf("update fish: %w", err)
	}
	fish, err := s.store.GetFish(ctx, newName)
	if err != nil {
		return models.CatalogFish{}, fmt.Errorf("reload fish: %w", err)
	}

	details := newName
	if newName != oldName {
		details = fmt.Sprintf("%s -> %s", oldName, newName)
	}
	s.record(ctx, actor, models.ActionRenameFish, details)
	return fish, nil
}

// DeleteFish removes a catalog entry. Stall entries are left in place.
func (s *Service) DeleteFish(ctx context.Context, actor, name string) error {
	if err := s.store.DeleteFish(ctx, name); err != nil {
		return fmt.Errorf("delete fish: %w", err)
	}
	s.record(ctx, actor, models.ActionRemoveFish, name)
	return nil
}

// SetFishDisabled hides or shows a fish for buyers. Only catalog fish can be
// disabled; any name can be re-enabled.
func (s *Service) SetFishDisabled(ctx context.Context, actor, name string, disabled bool) error {
	if disabled {
		if _, err := s.store.GetFish(ctx, name); err != nil {
			return fmt.Errorf("load fish: %w", err)
		}
	}
	if err := s.store.SetFishDisabled(ctx, name, disabled); err != nil {
		return fmt.Errorf("set fish status: %w", err)
	}

	action := models.ActionEnableFish
	if disabled {
		action = models.ActionDisableFish
	}
	s.record(ctx, actor, action, name)
	return nil
}

// Activity returns the global log, newest first.
func (s *Service) Activity(ctx context.Context) ([]models.ActivityLogEntry, error) {
	entries, err := s.store.ListGlobal(ctx, models.MaxActivityEntries)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	return entries, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name, self string) error {
	catalog, err := s.store.ListCatalog(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	for _, fish := range catalog {
		if fish.Name != self && strings.EqualFold(fish.Name, name) {
			return fmt.Errorf("fish %q already exists as %q: %w", name, fish.Name, models.ErrConflict)
		}
	}
	return nil
}

// record appends to the global log. A log failure does not undo the action.
func (s *Service) record(ctx context.Context, actor, action, details string) {
	entry := models.ActivityLogEntry{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		Timestamp: s.now(),
	}
	if err := s.store.AppendGlobal(ctx, entry, models.MaxActivityEntries); err != nil {
		s.logger.Warn("failed to append global activity", zap.String("action", action), zap.Error(err))
	}
}

func trimProfile(p models.VendorProfile) models.VendorProfile {
	p.StallName = strings.TrimSpace(p.StallName)
	p.Location = strings.TrimSpace(p.Location)
	p.Username = strings.TrimSpace(p.Username)
	return p
}
