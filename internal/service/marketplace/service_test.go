package marketplace

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository/memory"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func ago(d time.Duration) *time.Time {
	t := testNow.Add(-d)
	return &t
}

// brokenVendors fails every vendor listing.
type brokenVendors struct{ *memory.Store }

func (brokenVendors) ListVendors(context.Context) ([]models.Vendor, error) {
	return nil, fmt.Errorf("list vendors: %w", models.ErrStoreUnavailable)
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()

	for _, name := range []string{"Tilapia", "Catfish", "Salmon"} {
		require.NoError(t, s.CreateFish(ctx, models.CatalogFish{Name: name, Image: name + ".png"}))
	}

	vendors := []models.Vendor{
		{
			ID: "a", Username: "a", StallName: "Ama's Catch", Location: "Makola", LastSeen: ago(time.Second),
			FishList: []models.StockEntry{
				{Name: "Tilapia", Quantity: models.IntPtr(3), Price: 100},
				{Name: "Ghostfish", Quantity: models.IntPtr(2), Price: 10},
			},
		},
		{
			ID: "b", Username: "b", StallName: "Kofi Fresh", Location: "makola ", LastSeen: ago(time.Hour),
			FishList: []models.StockEntry{{Name: "Tilapia", Quantity: models.IntPtr(9), Price: 80}},
		},
		{
			ID: "c", Username: "c", StallName: "Harbour", Location: "Tema", LastSeen: ago(2 * time.Second),
			FishList: []models.StockEntry{
				{Name: "Catfish", Quantity: models.IntPtr(5), Price: 60},
				{Name: "Salmon", Quantity: nil, Price: 0},
			},
		},
	}
	for _, v := range vendors {
		require.NoError(t, s.CreateVendor(ctx, v))
	}
	return s
}

func newService(store *memory.Store, vendors VendorReader) *Service {
	if vendors == nil {
		vendors = store
	}
	return NewService(vendors, store, store, availability.NewEngine(5*time.Second), fixedNow, nil)
}

func TestDashboard(t *testing.T) {
	store := seed(t)
	require.NoError(t, store.SetFishDisabled(context.Background(), "Salmon", true))
	svc := newService(store, nil)

	got, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, got.Fish, 2)
	assert.Empty(t, got.Notice)

	assert.Equal(t, "Catfish", got.Fish[0].Name)
	assert.Equal(t, 5, got.Fish[0].TotalQuantity)
	assert.Equal(t, "Catfish.png", got.Fish[0].Image)

	assert.Equal(t, "Tilapia", got.Fish[1].Name)
	assert.Equal(t, 3, got.Fish[1].TotalQuantity)
	assert.Equal(t, 80.0, got.Fish[1].MinPrice)
	assert.Equal(t, 100.0, got.Fish[1].MaxPrice)
	assert.Equal(t, models.Available, got.Fish[1].Availability)
}

func TestDashboardSearchIsCaseInsensitive(t *testing.T) {
	svc := newService(seed(t), nil)

	got, err := svc.Dashboard(context.Background(), "  TILA ")
	require.NoError(t, err)

	require.Len(t, got.Fish, 1)
	assert.Equal(t, "Tilapia", got.Fish[0].Name)
}

func TestDashboardDegradesWithoutVendors(t *testing.T) {
	store := seed(t)
	svc := newService(store, brokenVendors{store})

	got, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, models.VendorNotice, got.Notice)
	require.Len(t, got.Fish, 3)
	for _, f := range got.Fish {
		assert.Equal(t, 0, f.TotalQuantity)
		assert.Equal(t, models.NoStock, f.Availability)
	}
}

func TestFishDetail(t *testing.T) {
	svc := newService(seed(t), nil)

	got, err := svc.FishDetail(context.Background(), "Tilapia")
	require.NoError(t, err)

	assert.Equal(t, "Tilapia.png", got.Fish.Image)
	assert.Equal(t, 3, got.Fish.TotalQuantity)
	require.Len(t, got.Stalls, 1)
	assert.Equal(t, "Ama's Catch", got.Stalls[0].StallName)
	assert.Equal(t, 3, got.Stalls[0].Quantity)
}

func TestFishDetailHidesDisabledAndUnknownFish(t *testing.T) {
	store := seed(t)
	require.NoError(t, store.SetFishDisabled(context.Background(), "Tilapia", true))
	svc := newService(store, nil)

	_, err := svc.FishDetail(context.Background(), "Tilapia")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.FishDetail(context.Background(), "Shark")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStallDetail(t *testing.T) {
	store := seed(t)
	require.NoError(t, store.SetFishDisabled(context.Background(), "Salmon", true))
	svc := newService(store, nil)

	got, err := svc.StallDetail(context.Background(), "a")
	require.NoError(t, err)

	assert.True(t, got.Online)
	assert.Equal(t, "Ama's Catch", got.Stall.StallName)
	require.Len(t, got.Stock, 2)
	assert.False(t, got.Stock[0].Orphaned)
	assert.True(t, got.Stock[1].Orphaned)

	got, err = svc.StallDetail(context.Background(), "c")
	require.NoError(t, err)
	require.Len(t, got.Stock, 1, "disabled salmon is hidden")
	assert.Equal(t, "Catfish", got.Stock[0].Name)

	_, err = svc.StallDetail(context.Background(), "zzz")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStallDetailOfflineVendor(t *testing.T) {
	svc := newService(seed(t), nil)

	got, err := svc.StallDetail(context.Background(), "b")
	require.NoError(t, err)

	assert.False(t, got.Online)
	require.Len(t, got.Stock, 1)
	assert.Equal(t, 0, got.Stock[0].EffectiveQuantity)
	assert.Equal(t, models.NoStock, got.Stock[0].Availability)
}

func TestStallsAt(t *testing.T) {
	svc := newService(seed(t), nil)

	all, err := svc.StallsAt(context.Background(), "MAKOLA", "")
	require.NoError(t, err)
	assert.Len(t, all.Stalls, 2)

	holding, err := svc.StallsAt(context.Background(), "Makola", "Tilapia")
	require.NoError(t, err)
	require.Len(t, holding.Stalls, 1)
	assert.Equal(t, "a", holding.Stalls[0].ID)
	assert.Equal(t, 3, holding.Stalls[0].Quantity)

	_, err = svc.StallsAt(context.Background(), " ", "")
	assert.True(t, errors.Is(err, models.ErrValidation))
}
