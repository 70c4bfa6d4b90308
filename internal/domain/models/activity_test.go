package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(n int) []ActivityLogEntry {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]ActivityLogEntry, n)
	for i := range out {
		out[i] = ActivityLogEntry{
			ID:        fmt.Sprintf("e%02d", i),
			Actor:     "admin",
			Action:    ActionAddCatalog,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestAppendAndPruneDropsOldest(t *testing.T) {
	log := entries(MaxActivityEntries)
	next := ActivityLogEntry{ID: "new", Timestamp: log[len(log)-1].Timestamp.Add(time.Minute)}

	got := AppendAndPrune(log, next, MaxActivityEntries)

	require.Len(t, got, MaxActivityEntries)
	assert.Equal(t, "e01", got[0].ID)
	assert.Equal(t, "new", got[len(got)-1].ID)
	assert.Equal(t, "e00", log[0].ID, "input is left untouched")
}

func TestAppendAndPruneUnderLimit(t *testing.T) {
	got := AppendAndPrune(entries(3), ActivityLogEntry{ID: "new"}, MaxActivityEntries)

	require.Len(t, got, 4)
	assert.Equal(t, "e00", got[0].ID)
}

func TestAppendAndPruneOverfullInput(t *testing.T) {
	got := AppendAndPrune(entries(20), ActivityLogEntry{ID: "new"}, 5)

	require.Len(t, got, 5)
	assert.Equal(t, "e16", got[0].ID)
	assert.Equal(t, "new", got[4].ID)
}

func TestAppendAndPruneDefaultsMaxSize(t *testing.T) {
	got := AppendAndPrune(entries(MaxActivityEntries), ActivityLogEntry{ID: "new"}, 0)

	assert.Len(t, got, MaxActivityEntries)
}

func TestVendorFindStock(t *testing.T) {
	v := Vendor{FishList: []StockEntry{{Name: "Tilapia"}, {Name: "Catfish"}}}

	assert.Equal(t, 1, v.FindStock("Catfish"))
	assert.Equal(t, -1, v.FindStock("catfish"))
}
