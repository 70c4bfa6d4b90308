// Package availability decides whether a fish can be bought at a stall and
// folds per-vendor stock into catalog-wide views. Every function here is pure:
// callers pass the vendor snapshots and a single captured "now".
package availability

import "time"

// DefaultThreshold is the heartbeat staleness window used when none is configured.
const DefaultThreshold = 5 * time.Second

// Engine applies one presence threshold uniformly to every computation.
type Engine struct {
	threshold time.Duration
}

// NewEngine builds an engine. A non-positive threshold falls back to DefaultThreshold.
func NewEngine(threshold time.Duration) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold}
}

// Threshold returns the configured staleness window.
func (e *Engine) Threshold() time.Duration {
	return e.threshold
}

// IsOnline reports whether a vendor with the given heartbeat is online at now.
func (e *Engine) IsOnline(lastSeen *time.Time, now time.Time) bool {
	return IsOnline(lastSeen, now, e.threshold)
}

// IsOnline returns false when lastSeen is absent or older than threshold.
// A heartbeat exactly threshold old still counts as online.
func IsOnline(lastSeen *time.Time, now time.Time, threshold time.Duration) bool {
	if lastSeen == nil || lastSeen.IsZero() {
		return false
	}
	return now.Sub(*lastSeen) <= threshold
}
