package models

import "time"

// Availability is the buyer-facing stock state.
type Availability string

const (
	Available Availability = "Available"
	NoStock   Availability = "No Stock"
)

// VendorNotice is attached to views computed without vendor data.
const VendorNotice = "Vendor data is temporarily unavailable. Stock is shown as unavailable."

// NormalizedStockEntry is a stock entry after presence has been applied.
type NormalizedStockEntry struct {
	VendorID           string       `json:"vendorId"`
	Name               string       `json:"name"`
	Price              float64      `json:"price"`
	StoredQuantity     *int         `json:"storedQuantity"`
	EffectiveQuantity  int          `json:"quantity"`
	Availability       Availability `json:"status"`
	QuantityPending    bool         `json:"quantityPending"`
	QuantityReportedAt *time.Time   `json:"quantityReportedAt,omitempty"`
	Orphaned           bool         `json:"orphaned,omitempty"`
}

// VendorContribution is one vendor's share in an aggregated view.
type VendorContribution struct {
	VendorID string  `json:"vendorId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// AggregatedFishView combines every vendor's stock for one fish name.
type AggregatedFishView struct {
	Name                 string               `json:"name"`
	TotalQuantity        int                  `json:"totalQuantity"`
	MinPrice             float64              `json:"minPrice"`
	MaxPrice             float64              `json:"maxPrice"`
	WeightedAveragePrice float64              `json:"weightedAveragePrice"`
	Availability         Availability         `json:"status"`
	ListingCount         int                  `json:"listingCount"`
	ContributingVendors  []VendorContribution `json:"contributingVendors"`
}
