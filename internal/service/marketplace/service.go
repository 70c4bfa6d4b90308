// Package marketplace builds the buyer-facing views. Every view is computed
// from a fresh store read with one captured clock value.
package marketplace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
)

// VendorReader is the vendor access the buyer views need.
type VendorReader interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendor(ctx context.Context, id string) (models.Vendor, error)
}

// CatalogReader is the catalog access the buyer views need.
type CatalogReader interface {
	ListCatalog(ctx context.Context) ([]models.CatalogFish, error)
	GetFish(ctx context.Context, name string) (models.CatalogFish, error)
}

// SettingsReader returns the disabled fish list.
type SettingsReader interface {
	DisabledFish(ctx context.Context) ([]string, error)
}

// Service computes buyer views.
type Service struct {
	vendors  VendorReader
	catalog  CatalogReader
	settings SettingsReader
	engine   *availability.Engine
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a marketplace service.
func NewService(vendors VendorReader, catalog CatalogReader, settings SettingsReader, engine *availability.Engine, now func() time.Time, logger *zap.Logger) *Service {
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
		engine:   engine,
		now:      now,
		logger:   logger.Named("svc.marketplace"),
	}
}

// CatalogFishView is one dashboard tile.
type CatalogFishView struct {
	models.AggregatedFishView
	Image string `json:"image"`
}

// Dashboard is the buyer home screen.
type Dashboard struct {
	Fish   []CatalogFishView `json:"fish"`
	Notice string            `json:"notice,omitempty"`
}

// StallInfo is the public part of a vendor record.
type StallInfo struct {
	ID           string `json:"id"`
	StallName    string `json:"stallName"`
	Location     string `json:"location"`
	StallContact string `json:"stallContact"`
	StallHours   string `json:"stallHours"`
	StallPicture string `json:"stallPicture,omitempty"`
}

// StallOffer is a stall holding a given fish.
type StallOffer struct {
	StallInfo
	Online   bool    `json:"online"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// FishDetail is the buyer fish screen.
type FishDetail struct {
	Fish   CatalogFishView `json:"fish"`
	Stalls []StallOffer    `json:"stalls"`
	Notice string          `json:"notice,omitempty"`
}

// StallDetail is the buyer stall screen.
type StallDetail struct {
	Stall    StallInfo                     `json:"stall"`
	Online   bool                          `json:"online"`
	LastSeen *time.Time                    `json:"lastSeen,omitempty"`
	Selling  bool                          `json:"selling"`
	Stock    []models.NormalizedStockEntry `json:"stock"`
}

// StallsResult lists stalls at a location.
type StallsResult struct {
	Stalls []StallOffer `json:"stalls"`
	Notice string       `json:"notice,omitempty"`
}

// Dashboard lists visible catalog fish with their aggregated stock, sorted by
// name and filtered by a case-insensitive substring.
func (s *Service) Dashboard(ctx context.Context, search string) (Dashboard, error) {
	catalog, err := s.visibleCatalog(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		filtered := catalog[:0]
		for _, fish := range catalog {
			if strings.Contains(strings.ToLower(fish.Name), q) {
				filtered = append(filtered, fish)
			}
		}
		catalog = filtered
	}
	sort.SliceStable(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })

	vendors, notice := s.loadVendors(ctx)
	views := s.engine.AggregateCatalog(catalog, vendors, s.now())

	out := Dashboard{Fish: make([]CatalogFishView, 0, len(views)), Notice: notice}
	for i, view := range views {
		out.Fish = append(out.Fish, CatalogFishView{AggregatedFishView: view, Image: catalog[i].Image})
	}
	return out, nil
}

// FishDetail returns one visible fish with the stalls currently holding it.
func (s *Service) FishDetail(ctx context.Context, name string) (FishDetail, error) {
	fish, err := s.catalog.GetFish(ctx, name)
	if err != nil {
		return FishDetail{}, fmt.Errorf("load fish: %w", err)
	}
	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return FishDetail{}, fmt.Errorf("load fish status: %w", err)
	}
	if availability.IsDisabled(name, disabled) {
		return FishDetail{}, fmt.Errorf("fish %q is disabled: %w", name, models.ErrNotFound)
	}

	vendors, notice := s.loadVendors(ctx)
	now := s.now()
	view := s.engine.Aggregate(name, vendors, now)

	byID := make(map[string]models.Vendor, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = v
	}

	stalls := make([]StallOffer, 0, len(view.ContributingVendors))
	for _, c := range view.ContributingVendors {
		v := byID[c.VendorID]
		stalls = append(stalls, StallOffer{
			StallInfo: stallInfo(v),
			Online:    true,
			Quantity:  c.Quantity,
			Price:     c.Price,
		})
	}

	return FishDetail{
		Fish:   CatalogFishView{AggregatedFishView: view, Image: fish.Image},
		Stalls: stalls,
		Notice: notice,
	}, nil
}

// StallDetail returns a vendor's public info and normalized stock without
// disabled fish. Entries missing from the catalog are flagged orphaned.
func (s *Service) StallDetail(ctx context.Context, vendorID string) (StallDetail, error) {
	vendor, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return StallDetail{}, fmt.Errorf("load vendor: %w", err)
	}
	catalog, err := s.catalog.ListCatalog(ctx)
	if err != nil {
		return StallDetail{}, fmt.Errorf("load catalog: %w", err)
	}
	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return StallDetail{}, fmt.Errorf("load fish status: %w", err)
	}

	now := s.now()
	stock := s.engine.Normalize(vendor, now)
	stock = availability.VisibleStock(stock, disabled)
	stock = availability.MarkOrphans(stock, catalog)

	return StallDetail{
		Stall:    stallInfo(vendor),
		Online:   s.engine.IsOnline(vendor.LastSeen, now),
		LastSeen: vendor.LastSeen,
		Selling:  vendor.Session.Active,
		Stock:    stock,
	}, nil
}

// StallsAt lists stalls whose location matches (case-insensitive). With a
// fish name only stalls currently holding that fish are returned, most stock
// first.
func (s *Service) StallsAt(ctx context.Context, location, fishName string) (StallsResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return StallsResult{}, fmt.Errorf("location is required: %w", models.ErrValidation)
	}

	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return StallsResult{}, fmt.Errorf("load fish status: %w", err)
	}
	if fishName != "" && availability.IsDisabled(fishName, disabled) {
		return StallsResult{Stalls: []StallOffer{}}, nil
	}

	vendors, notice := s.loadVendors(ctx)
	now := s.now()

	stalls := []StallOffer{}
	for _, v := range vendors {
		if !strings.EqualFold(strings.TrimSpace(v.Location), location) {
			continue
		}
		offer := StallOffer{StallInfo: stallInfo(v), Online: s.engine.IsOnline(v.LastSeen, now)}

		if fishName == "" {
			stalls = append(stalls, offer)
			continue
		}
		for _, entry := range s.engine.Normalize(v, now) {
			if entry.Name == fishName && entry.Availability == models.Available {
				offer.Quantity = entry.EffectiveQuantity
				offer.Price = entry.Price
				stalls = append(stalls, offer)
				break
			}
		}
	}

	sort.SliceStable(stalls, func(i, j int) bool {
		if stalls[i].Quantity != stalls[j].Quantity {
			return stalls[i].Quantity > stalls[j].Quantity
		}
		return stalls[i].ID < stalls[j].ID
	})
	return StallsResult{Stalls: stalls, Notice: notice}, nil
}

func (s *Service) visibleCatalog(ctx context.Context) ([]models.CatalogFish, error) {
	catalog, err := s.catalog.ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	disabled, err := s.settings.DisabledFish(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fish status: %w", err)
	}
	return availability.VisibleCatalog(catalog, disabled), nil
}

// loadVendors degrades to zero vendors when the store fails.
func (s *Service) loadVendors(ctx context.Context) ([]models.Vendor, string) {
	vendors, err := s.vendors.ListVendors(ctx)
	if err != nil {
		s.logger.Warn("vendor fetch failed, showing no stock", zap.Error(err))
		return nil, models.VendorNotice
	}
	return vendors, ""
}

func stallInfo(v models.Vendor) StallInfo {
	return StallInfo{
		ID:           v.ID,
		StallName:    v.StallName,
		Location:     v.Location,
		StallContact: v.StallContact,
		StallHours:   v.StallHours,
		StallPicture: v.StallPicture,
	}
}
