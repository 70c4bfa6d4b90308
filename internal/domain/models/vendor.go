package models

import "time"

// Vendor is a registered stall together with its inventory.
type Vendor struct {
	ID           string        `bson:"_id" json:"id"`
	StallName    string        `bson:"stallName" json:"stallName"`
	Location     string        `bson:"location" json:"location"`
	StallContact string        `bson:"stallContact" json:"stallContact"`
	StallHours   string        `bson:"stallHours" json:"stallHours"`
	StallPicture string        `bson:"stallPicture,omitempty" json:"stallPicture,omitempty"`
	Username     string        `bson:"username" json:"-"`
	PasswordHash string        `bson:"passwordHash" json:"-"`
	LastSeen     *time.Time    `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`
	FishList     []StockEntry  `bson:"fishList" json:"fishList"`
	Session      VendorSession `bson:"session" json:"session"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// StockEntry is one fish listed by a vendor. A nil Quantity means the
// external quantity reporter has not written a reading yet.
type StockEntry struct {
	Name               string     `bson:"name" json:"name"`
	Quantity           *int       `bson:"quantity" json:"quantity"`
	Price              float64    `bson:"price" json:"price"`
	QuantityReportedAt *time.Time `bson:"quantityReportedAt,omitempty" json:"quantityReportedAt,omitempty"`
}

// VendorSession tracks whether the stall is currently open for selling.
type VendorSession struct {
	Active bool       `bson:"active" json:"active"`
	Start  *time.Time `bson:"start,omitempty" json:"start,omitempty"`
}

// StallSettings holds the vendor-editable display fields.
type StallSettings struct {
	StallName    string
	Location     string
	StallContact string
	StallHours   string
}

// VendorProfile is the admin-editable part of a vendor record. Password is
// plaintext input only and is hashed before it reaches a repository.
type VendorProfile struct {
	StallName string
	Location  string
	Username  string
	Password  string
}

// FindStock returns the index of the named entry in the fish list, or -1.
func (v Vendor) FindStock(name string) int {
	for i, entry := range v.FishList {
		if entry.Name == name {
			return i
		}
	}
	return -1
}

// IntPtr is a small helper for building optional quantities.
func IntPtr(v int) *int {
	return &v
}
