package models

import "time"

// MaxActivityEntries bounds the global log and the vendor log display.
const MaxActivityEntries = 15

// Activity labels written by the services.
const (
	ActionAddFish        = "Add Fish"
	ActionDeleteFish     = "Delete Fish"
	ActionUpdatePrice    = "Update Price"
	ActionUpdateSettings = "Update Stall Settings"
	ActionSessionStart   = "Session Started"
	ActionSessionEnd     = "Session Ended"
	ActionSessionClosed  = "Session Closed"

	ActionAddVendor    = "Added Vendor"
	ActionUpdateVendor = "Updated Vendor"
	ActionDeleteVendor = "Deleted Vendor"
	ActionAddCatalog   = "Added Fish"
	ActionRenameFish   = "Renamed Fish"
	ActionRemoveFish   = "Deleted Fish"
	ActionDisableFish  = "Disabled Fish"
	ActionEnableFish   = "Enabled Fish"
)

// ActivityLogEntry records a mutating action. Entries are never updated.
type ActivityLogEntry struct {
	ID        string    `bson:"_id" json:"id"`
	Actor     string    `bson:"actionBy" json:"actor"`
	Action    string    `bson:"action" json:"action"`
	Details   string    `bson:"details" json:"details"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// AppendAndPrune appends entry to log (ordered oldest first) and drops the
// oldest entries until at most maxSize remain. The input slice is not
// modified.
func AppendAndPrune(log []ActivityLogEntry, entry ActivityLogEntry, maxSize int) []ActivityLogEntry {
	if maxSize <= 0 {
		maxSize = MaxActivityEntries
	}

	out := make([]ActivityLogEntry, 0, len(log)+1)
	out = append(out, log...)
	out = append(out, entry)

	if excess := len(out) - maxSize; excess > 0 {
		out = out[excess:]
	}
	return out
}
