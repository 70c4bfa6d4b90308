package vendors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository/memory"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *memory.Store, *clock) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	for _, name := range []string{"Tilapia", "Catfish", "Salmon"} {
		require.NoError(t, store.CreateFish(ctx, models.CatalogFish{Name: name}))
	}
	require.NoError(t, store.CreateVendor(ctx, models.Vendor{
		ID:        "v1",
		Username:  "ama",
		StallName: "Ama's Catch",
		Location:  "Makola",
		FishList:  []models.StockEntry{{Name: "Tilapia", Quantity: models.IntPtr(4), Price: 100}},
	}))

	c := &clock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	svc := NewService(store, store, store, store, availability.NewEngine(5*time.Second), c.now, nil)
	return svc, store, c
}

func TestHeartbeatMakesVendorOnline(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	view, err := svc.Stall(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, view.Online)
	assert.Equal(t, 0, view.Stock[0].EffectiveQuantity)

	_, err = svc.Heartbeat(ctx, "v1")
	require.NoError(t, err)

	view, err = svc.Stall(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, view.Online)
	assert.Equal(t, 4, view.Stock[0].EffectiveQuantity)

	c.t = c.t.Add(6 * time.Second)
	view, err = svc.Stall(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, view.Online)

	_, err = svc.Heartbeat(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddFish(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.AddFish(ctx, "v1", " Catfish ", 60)
	require.NoError(t, err)
	require.Len(t, v.FishList, 2)
	assert.Equal(t, "Catfish", v.FishList[1].Name)
	assert.Nil(t, v.FishList[1].Quantity, "quantity waits for the device")

	_, err = svc.AddFish(ctx, "v1", "Catfish", 60)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = svc.AddFish(ctx, "v1", "Shark", 60)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.AddFish(ctx, "v1", "Salmon", -1)
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, store.SetFishDisabled(ctx, "Salmon", true))
	_, err = svc.AddFish(ctx, "v1", "Salmon", 10)
	assert.ErrorIs(t, err, models.ErrValidation)

	log, err := svc.Activity(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, models.ActionAddFish, log[0].Action)
	assert.Equal(t, "ama", log[0].Actor)
}

func TestUpdatePriceKeepsPendingQuantity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddFish(ctx, "v1", "Catfish", 60)
	require.NoError(t, err)

	v, err := svc.UpdatePrice(ctx, "v1", "Catfish", 75)
	require.NoError(t, err)

	i := v.FindStock("Catfish")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, 75.0, v.FishList[i].Price)
	assert.Nil(t, v.FishList[i].Quantity)

	v, err = svc.UpdatePrice(ctx, "v1", "Tilapia", 110)
	require.NoError(t, err)
	assert.Equal(t, 4, *v.FishList[0].Quantity)

	_, err = svc.UpdatePrice(ctx, "v1", "Shark", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	log, err := svc.Activity(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "Tilapia: 100.00 -> 110.00", log[0].Details)
}

func TestRemoveFish(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.RemoveFish(ctx, "v1", "Tilapia")
	require.NoError(t, err)
	assert.Empty(t, v.FishList)

	_, err = svc.RemoveFish(ctx, "v1", "Tilapia")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.UpdateSettings(ctx, "v1", models.StallSettings{
		StallName:    " Ama's Fresh Catch ",
		Location:     "Makola",
		StallContact: "+233 20 000 0000",
		StallHours:   "6:00 AM - 6:00 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ama's Fresh Catch", v.StallName)

	_, err = svc.UpdateSettings(ctx, "v1", models.StallSettings{StallName: "x", Location: "y", StallHours: "6:00 PM - 6:00 AM"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateSettings(ctx, "v1", models.StallSettings{StallName: "", Location: "y"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReportQuantity(t *testing.T) {
	svc, store, c := newTestService(t)
	ctx := context.Background()

	entry, err := svc.ReportQuantity(ctx, "v1", "Tilapia", 12)
	require.NoError(t, err)
	assert.Equal(t, 12, *entry.Quantity)
	require.NotNil(t, entry.QuantityReportedAt)
	assert.Equal(t, c.t, *entry.QuantityReportedAt)

	v, err := store.GetVendor(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 12, *v.FishList[0].Quantity)

	_, err = svc.ReportQuantity(ctx, "v1", "Tilapia", -1)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.ReportQuantity(ctx, "v1", "Catfish", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddableCatalog(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.SetFishDisabled(ctx, "Salmon", true))

	got, err := svc.AddableCatalog(ctx, "v1")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Catfish", got[0].Name)
}

func TestStallHidesDisabledAndFlagsOrphans(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddFish(ctx, "v1", "Catfish", 60)
	require.NoError(t, err)
	require.NoError(t, store.SetFishDisabled(ctx, "Catfish", true))
	require.NoError(t, store.DeleteFish(ctx, "Tilapia"))

	view, err := svc.Stall(ctx, "v1")
	require.NoError(t, err)

	require.Len(t, view.Stock, 1)
	assert.Equal(t, "Tilapia", view.Stock[0].Name)
	assert.True(t, view.Stock[0].Orphaned)
}

func TestSessions(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	v, err := svc.StartSession(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, v.Session.Active)
	require.NotNil(t, v.Session.Start)

	_, err = svc.StartSession(ctx, "v1")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Second)
	v, err = svc.EndSession(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, v.Session.Active)

	log, err := svc.Activity(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, models.ActionSessionEnd, log[0].Action)
	assert.Equal(t, models.ActionSessionStart, log[1].Action)
}

func TestCloseStaleSessions(t *testing.T) {
	svc, store, c := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.CreateVendor(ctx, models.Vendor{ID: "v2", Username: "kofi"}))

	_, err := svc.StartSession(ctx, "v1")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, "v2")
	require.NoError(t, err)

	c.t = c.t.Add(3 * time.Second)
	_, err = svc.Heartbeat(ctx, "v2")
	require.NoError(t, err)

	c.t = c.t.Add(4 * time.Second)
	closed, err := svc.CloseStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	v1, err := store.GetVendor(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, v1.Session.Active)

	v2, err := store.GetVendor(ctx, "v2")
	require.NoError(t, err)
	assert.True(t, v2.Session.Active)

	log, err := svc.Activity(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionSessionClosed, log[0].Action)
}
