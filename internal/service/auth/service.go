// Package auth verifies vendor, admin and device credentials and manages
// bearer sessions.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/config"
	"github.com/mamadbah2/fishtrace/internal/domain/models"
)

// VendorFinder is the lookup the login flow needs.
type VendorFinder interface {
	FindVendorByUsername(ctx context.Context, username string) (models.Vendor, error)
}

// Service authenticates the three caller kinds.
type Service struct {
	vendors  VendorFinder
	sessions *SessionManager
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// NewService wires a new auth service.
func NewService(cfg config.AuthConfig, vendors VendorFinder, sessions *SessionManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		vendors:  vendors,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.Named("svc.auth"),
	}
}

// LoginVendor checks a vendor's credentials and issues a session. Unknown
// usernames and wrong passwords both return models.ErrUnauthorized.
func (s *Service) LoginVendor(ctx context.Context, username, password string) (Session, error) {
	vendor, err := s.vendors.FindVendorByUsername(ctx, username)
	switch {
	case errors.Is(err, models.ErrNotFound):
		burnComparison(password)
		return Session{}, models.ErrUnauthorized
	case err != nil:
		return Session{}, fmt.Errorf("vendor login: %w", err)
	}

	if vendor.PasswordHash == "" || !CheckPassword(vendor.PasswordHash, password) {
		return Session{}, models.ErrUnauthorized
	}

	session := s.sessions.Issue(RoleVendor, vendor.ID)
	s.logger.Info("vendor logged in", zap.String("vendor_id", vendor.ID))
	return session, nil
}

// LoginAdmin checks the configured admin credentials.
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := CheckPassword(s.cfg.AdminPasswordHash, password)
	if !userOK || !passOK {
		return Session{}, models.ErrUnauthorized
	}

	session := s.sessions.Issue(RoleAdmin, s.cfg.AdminUsername)
	s.logger.Info("admin logged in")
	return session, nil
}

// Logout revokes a token.
func (s *Service) Logout(token string) {
	s.sessions.ClearSession(token)
}

// Authenticate resolves a bearer token to its session.
func (s *Service) Authenticate(token string) (Session, error) {
	if token == "" {
		return Session{}, models.ErrUnauthorized
	}
	session, ok := s.sessions.GetSession(token)
	if !ok {
		return Session{}, models.ErrUnauthorized
	}
	return session, nil
}

// RevokeVendor drops every session of a vendor.
func (s *Service) RevokeVendor(vendorID string) {
	if n := s.sessions.ClearSubject(RoleVendor, vendorID); n > 0 {
		s.logger.Info("vendor sessions revoked", zap.String("vendor_id", vendorID), zap.Int("count", n))
	}
}

// VerifyDeviceKey compares the quantity reporter's key in constant time.
func (s *Service) VerifyDeviceKey(key string) error {
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.DeviceKey)) != 1 {
		return models.ErrUnauthorized
	}
	return nil
}
