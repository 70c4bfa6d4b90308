package firestore

import (
	"time"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// Firestore DTOs. Document ids carry the vendor id, fish name and entry id.

type vendorDoc struct {
	StallName    string     `firestore:"stallName"`
	Location     string     `firestore:"location"`
	StallContact string     `firestore:"stallContact"`
	StallHours   string     `firestore:"stallHours"`
	StallPicture string     `firestore:"stallPicture,omitempty"`
	Username     string     `firestore:"username"`
	PasswordHash string     `firestore:"passwordHash"`
	LastSeen     *time.Time `firestore:"lastSeen"`
	FishList     []stockDoc `firestore:"fishList"`
	Session      sessionDoc `firestore:"session"`
	CreatedAt    time.Time  `firestore:"createdAt"`
	UpdatedAt    time.Time  `firestore:"updatedAt"`
}

type stockDoc struct {
	Name               string     `firestore:"name"`
	Quantity           *int64     `firestore:"quantity"`
	Price              float64    `firestore:"price"`
	QuantityReportedAt *time.Time `firestore:"quantityReportedAt,omitempty"`
}

type sessionDoc struct {
	Active bool       `firestore:"active"`
	Start  *time.Time `firestore:"start"`
}

type catalogDoc struct {
	Image     string    `firestore:"image"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type fishStatusDocument struct {
	DisabledFish []string `firestore:"disabledFish"`
}

type activityDoc struct {
	Actor     string    `firestore:"actionBy"`
	Action    string    `firestore:"action"`
	Details   string    `firestore:"details"`
	Timestamp time.Time `firestore:"timestamp"`
}

func vendorDocFromDomain(v models.Vendor) vendorDoc {
	fish := make([]stockDoc, 0, len(v.FishList))
	for _, e := range v.FishList {
		d := stockDoc{Name: e.Name, Price: e.Price, QuantityReportedAt: e.QuantityReportedAt}
		if e.Quantity != nil {
			q := int64(*e.Quantity)
			d.Quantity = &q
		}
		fish = append(fish, d)
	}
	return vendorDoc{
		StallName:    v.StallName,
		Location:     v.Location,
		StallContact: v.StallContact,
		StallHours:   v.StallHours,
		StallPicture: v.StallPicture,
		Username:     v.Username,
		PasswordHash: v.PasswordHash,
		LastSeen:     v.LastSeen,
		FishList:     fish,
		Session:      sessionDoc{Active: v.Session.Active, Start: v.Session.Start},
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func (d vendorDoc) toDomain(id string) models.Vendor {
	fish := make([]models.StockEntry, 0, len(d.FishList))
	for _, e := range d.FishList {
		entry := models.StockEntry{Name: e.Name, Price: e.Price, QuantityReportedAt: e.QuantityReportedAt}
		if e.Quantity != nil {
			entry.Quantity = models.IntPtr(int(*e.Quantity))
		}
		fish = append(fish, entry)
	}
	return models.Vendor{
		ID:           id,
		StallName:    d.StallName,
		Location:     d.Location,
		StallContact: d.StallContact,
		StallHours:   d.StallHours,
		StallPicture: d.StallPicture,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		LastSeen:     d.LastSeen,
		FishList:     fish,
		Session:      models.VendorSession{Active: d.Session.Active, Start: d.Session.Start},
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func activityDocFromDomain(e models.ActivityLogEntry) activityDoc {
	return activityDoc{Actor: e.Actor, Action: e.Action, Details: e.Details, Timestamp: e.Timestamp}
}

func (d activityDoc) toDomain(id string) models.ActivityLogEntry {
	return models.ActivityLogEntry{ID: id, Actor: d.Actor, Action: d.Action, Details: d.Details, Timestamp: d.Timestamp}
}
