// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store, gateway, repo and service layers.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a record with the same id already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionConflict indicates optimistic concurrency failure (base version mismatch).
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the remote service could not be reached or timed out.
	ErrUnavailable = errors.New("remote unavailable")

	// ErrValidation indicates a payload rejected by validation rules.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition indicates a disallowed order status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownCollection indicates a collection name the service does not serve.
	ErrUnknownCollection = errors.New("unknown collection")
)
