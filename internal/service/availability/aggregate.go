package availability

import (
	"math"
	"sort"
	"time"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// Aggregate folds every vendor's normalized entries for fishName into one view.
func (e *Engine) Aggregate(fishName string, vendors []models.Vendor, now time.Time) models.AggregatedFishView {
	acc := newAccumulator(fishName)
	for _, vendor := range vendors {
		for _, entry := range e.Normalize(vendor, now) {
			if entry.Name == fishName {
				acc.add(entry)
			}
		}
	}
	return acc.finish()
}

// AggregateAll builds the view of every fish name listed by any vendor in a
// single pass over the vendors.
func (e *Engine) AggregateAll(vendors []models.Vendor, now time.Time) map[string]models.AggregatedFishView {
	groups := make(map[string]*accumulator)
	for _, vendor := range vendors {
		for _, entry := range e.Normalize(vendor, now) {
			acc, ok := groups[entry.Name]
			if !ok {
				acc = newAccumulator(entry.Name)
				groups[entry.Name] = acc
			}
			acc.add(entry)
		}
	}

	views := make(map[string]models.AggregatedFishView, len(groups))
	for name, acc := range groups {
		views[name] = acc.finish()
	}
	return views
}

// AggregateCatalog returns one view per catalog fish, in catalog order. Fish
// nobody lists get the empty view.
func (e *Engine) AggregateCatalog(catalog []models.CatalogFish, vendors []models.Vendor, now time.Time) []models.AggregatedFishView {
	all := e.AggregateAll(vendors, now)

	out := make([]models.AggregatedFishView, 0, len(catalog))
	for _, fish := range catalog {
		view, ok := all[fish.Name]
		if !ok {
			view = newAccumulator(fish.Name).finish()
		}
		out = append(out, view)
	}
	return out
}

type accumulator struct {
	view     models.AggregatedFishView
	weighted float64
	priceSum float64
}

func newAccumulator(name string) *accumulator {
	return &accumulator{view: models.AggregatedFishView{Name: name}}
}

func (a *accumulator) add(entry models.NormalizedStockEntry) {
	// Price bounds include offline listings; price belongs to the listing, not the stock.
	if a.view.ListingCount == 0 {
		a.view.MinPrice = entry.Price
		a.view.MaxPrice = entry.Price
	} else {
		a.view.MinPrice = math.Min(a.view.MinPrice, entry.Price)
		a.view.MaxPrice = math.Max(a.view.MaxPrice, entry.Price)
	}
	a.view.ListingCount++
	a.priceSum += entry.Price

	a.view.TotalQuantity = addSaturating(a.view.TotalQuantity, entry.EffectiveQuantity)
	a.weighted += entry.Price * float64(entry.EffectiveQuantity)

	if entry.EffectiveQuantity >= 1 {
		a.view.ContributingVendors = append(a.view.ContributingVendors, models.VendorContribution{
			VendorID: entry.VendorID,
			Quantity: entry.EffectiveQuantity,
			Price:    entry.Price,
		})
	}
}

func (a *accumulator) finish() models.AggregatedFishView {
	view := a.view

	switch {
	case view.TotalQuantity > 0:
		view.WeightedAveragePrice = roundCents(a.weighted / float64(view.TotalQuantity))
	case view.ListingCount > 0:
		view.WeightedAveragePrice = roundCents(a.priceSum / float64(view.ListingCount))
	}

	view.Availability = models.NoStock
	if view.TotalQuantity > 0 {
		view.Availability = models.Available
	}

	contributors := make([]models.VendorContribution, len(view.ContributingVendors))
	copy(contributors, view.ContributingVendors)
	sort.SliceStable(contributors, func(i, j int) bool {
		if contributors[i].Quantity != contributors[j].Quantity {
			return contributors[i].Quantity > contributors[j].Quantity
		}
		return contributors[i].VendorID < contributors[j].VendorID
	})
	view.ContributingVendors = contributors

	return view
}

// addSaturating adds non-negative quantities without wrapping.
func addSaturating(total, qty int) int {
	if qty > math.MaxInt-total {
		return math.MaxInt
	}
	return total + qty
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
