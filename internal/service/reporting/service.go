// Package reporting exports periodic stock snapshots to a spreadsheet.
package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	repo "github.com/mamadbah2/fishtrace/internal/repository/sheets"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
)

const timestampLayout = "2006-01-02 15:04"

var stockHeader = []interface{}{"Timestamp", "Fish", "Status", "Quantity", "Min Price", "Max Price", "Avg Price", "Listings"}

// Source supplies the data a snapshot is built from.
type Source interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	ListCatalog(ctx context.Context) ([]models.CatalogFish, error)
	DisabledFish(ctx context.Context) ([]string, error)
}

// Service builds stock snapshots and appends them to a sheet range.
type Service struct {
	sheets     repo.Repository
	source     Source
	engine     *availability.Engine
	stockRange string
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewService wires a reporting service. Timestamps are written in loc.
func NewService(sheets repo.Repository, source Source, engine *availability.Engine, stockRange string, loc *time.Location, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		sheets:     sheets,
		source:     source,
		engine:     engine,
		stockRange: stockRange,
		loc:        loc,
		now:        now,
		logger:     logger.Named("svc.reporting"),
	}
}

// Snapshot aggregates every buyer-visible catalog fish at the current instant.
func (s *Service) Snapshot(ctx context.Context) ([]models.AggregatedFishView, time.Time, error) {
	catalog, err := s.source.ListCatalog(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list catalog: %w", err)
	}
	disabled, err := s.source.DisabledFish(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load fish status: %w", err)
	}
	vendors, err := s.source.ListVendors(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list vendors: %w", err)
	}

	now := s.now()
	visible := availability.VisibleCatalog(catalog, disabled)
	return s.engine.AggregateCatalog(visible, vendors, now), now, nil
}

// ExportStock appends one row per visible fish, writing the header first when
// the range is empty. It returns the number of fish rows written.
func (s *Service) ExportStock(ctx context.Context) (int, error) {
	views, at, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := s.sheets.ReadRange(ctx, s.stockRange)
	if err != nil {
		return 0, fmt.Errorf("read stock range: %w", err)
	}

	rows := make([][]interface{}, 0, len(views)+1)
	if len(existing) == 0 {
		rows = append(rows, stockHeader)
	}
	stamp := at.In(s.loc).Format(timestampLayout)
	for _, v := range views {
		rows = append(rows, []interface{}{
			stamp,
			v.Name,
			string(v.Availability),
			v.TotalQuantity,
			v.MinPrice,
			v.MaxPrice,
			v.WeightedAveragePrice,
			v.ListingCount,
		})
	}

	if len(views) == 0 {
		s.logger.Debug("catalog empty, nothing to export")
		return 0, nil
	}

	if err := s.sheets.AppendRows(ctx, s.stockRange, rows); err != nil {
		return 0, fmt.Errorf("append stock rows: %w", err)
	}

	s.logger.Info("stock snapshot exported", zap.Int("fish", len(views)), zap.String("range", s.stockRange))
	return len(views), nil
}
