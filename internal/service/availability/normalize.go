package availability

import (
	"time"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// Normalize applies presence to every entry of the vendor's fish list. An
// offline vendor has zero effective stock whatever the stored quantity says.
// Stored values above models.MaxQuantity count as models.MaxQuantity.
func (e *Engine) Normalize(vendor models.Vendor, now time.Time) []models.NormalizedStockEntry {
	online := e.IsOnline(vendor.LastSeen, now)

	out := make([]models.NormalizedStockEntry, 0, len(vendor.FishList))
	for _, entry := range vendor.FishList {
		out = append(out, normalizeEntry(vendor.ID, entry, online))
	}
	return out
}

func normalizeEntry(vendorID string, entry models.StockEntry, online bool) models.NormalizedStockEntry {
	n := models.NormalizedStockEntry{
		VendorID:        vendorID,
		Name:            entry.Name,
		Price:           entry.Price,
		StoredQuantity:  copyInt(entry.Quantity),
		QuantityPending: entry.Quantity == nil,
		Availability:    models.NoStock,
	}
	if entry.QuantityReportedAt != nil {
		at := *entry.QuantityReportedAt
		n.QuantityReportedAt = &at
	}

	if !online || entry.Quantity == nil {
		return n
	}

	if qty := *entry.Quantity; qty > 0 {
		n.EffectiveQuantity = min(qty, models.MaxQuantity)
		n.Availability = models.Available
	}
	return n
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
