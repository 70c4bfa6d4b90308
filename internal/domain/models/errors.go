package models

import "errors"

var (
	// ErrNotFound indicates a referenced vendor, fish or entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input that must not reach the store.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable indicates a backend or network failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnauthorized is returned for any credential mismatch.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrConflict indicates a duplicate name, username or stall entry.
	ErrConflict = errors.New("already exists")
)
