package services

import "errors"

// Sentinel errors surfaced by the service layer. Handlers match these with
// errors.Is to pick the outward message and status.
var (
	// ErrNotFound means the requested user or report does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCredential means the username or email is already taken.
	ErrDuplicateCredential = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned for every authentication failure.
	// Callers must not distinguish an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
