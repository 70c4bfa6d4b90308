package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role separates vendor and admin sessions.
type Role string

const (
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Session is an authenticated bearer token. Subject is the vendor id for
// vendors and the username for admins.
type Session struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionManager holds issued tokens in memory.
type SessionManager struct {
	sessions map[string]Session
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager(ttl time.Duration, now func() time.Time) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      now,
	}
}

// Issue creates a session for subject.
func (sm *SessionManager) Issue(role Role, subject string) Session {
	s := Session{
		Token:     uuid.NewString(),
		Role:      role,
		Subject:   subject,
		ExpiresAt: sm.now().Add(sm.ttl),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[s.Token] = s
	return s
}

// GetSession retrieves a live session.
func (sm *SessionManager) GetSession(token string) (Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, exists := sm.sessions[token]
	if !exists || !sm.now().Before(s.ExpiresAt) {
		return Session{}, false
	}
	return s, true
}

// ClearSession removes one token.
func (sm *SessionManager) ClearSession(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, token)
}

// ClearSubject removes every token of a subject, e.g. a deleted vendor.
func (sm *SessionManager) ClearSubject(role Role, subject string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for token, s := range sm.sessions {
		if s.Role == role && s.Subject == subject {
			delete(sm.sessions, token)
			removed++
		}
	}
	return removed
}

// PurgeExpired drops expired tokens and returns how many were removed.
func (sm *SessionManager) PurgeExpired() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	removed := 0
	for token, s := range sm.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(sm.sessions, token)
			removed++
		}
	}
	return removed
}
