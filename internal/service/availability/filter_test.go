package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

func TestVisibleCatalog(t *testing.T) {
	catalog := []models.CatalogFish{{Name: "Tilapia"}, {Name: "Catfish"}, {Name: "Salmon"}}

	got := VisibleCatalog(catalog, []string{"Catfish", "Shark"})

	assert.Equal(t, []models.CatalogFish{{Name: "Tilapia"}, {Name: "Salmon"}}, got)
}

func TestVisibleCatalogIsCaseSensitive(t *testing.T) {
	catalog := []models.CatalogFish{{Name: "Tilapia"}}

	got := VisibleCatalog(catalog, []string{"tilapia"})

	assert.Len(t, got, 1)
}

func TestAnnotateCatalog(t *testing.T) {
	catalog := []models.CatalogFish{{Name: "Tilapia"}, {Name: "Catfish"}}

	got := AnnotateCatalog(catalog, []string{"Catfish"})

	require.Len(t, got, 2)
	assert.False(t, got[0].Disabled)
	assert.True(t, got[1].Disabled)
	assert.Equal(t, "Catfish", got[1].Name)
}

func TestVisibleStock(t *testing.T) {
	entries := []models.NormalizedStockEntry{{Name: "Tilapia"}, {Name: "Catfish"}}

	got := VisibleStock(entries, []string{"Tilapia"})

	require.Len(t, got, 1)
	assert.Equal(t, "Catfish", got[0].Name)
}

func TestMarkOrphans(t *testing.T) {
	entries := []models.NormalizedStockEntry{{Name: "Tilapia"}, {Name: "Ghostfish"}}
	catalog := []models.CatalogFish{{Name: "Tilapia"}}

	got := MarkOrphans(entries, catalog)

	assert.False(t, got[0].Orphaned)
	assert.True(t, got[1].Orphaned)
	assert.False(t, entries[1].Orphaned, "input is left untouched")
}

func TestIsDisabled(t *testing.T) {
	assert.True(t, IsDisabled("Tilapia", []string{"Catfish", "Tilapia"}))
	assert.False(t, IsDisabled("Tilapia", nil))
}
