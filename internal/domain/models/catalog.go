package models

import "time"

// CatalogFish is an entry in the admin-curated fish catalog. Name doubles as
// the identifier.
type CatalogFish struct {
	Name      string    `bson:"_id" json:"name"`
	Image     string    `bson:"image" json:"image"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// FishStatusSettings mirrors the settings/fishStatus document.
type FishStatusSettings struct {
	DisabledFish []string `bson:"disabledFish" json:"disabledFish"`
}

// AnnotatedFish is a catalog entry as shown to admins: disabled fish stay
// visible with an explicit marker.
type AnnotatedFish struct {
	CatalogFish
	Disabled bool `json:"disabled"`
}
