package auth

import "errors"

var (
	// ErrInvalidIdentifier is returned when the sign-in identifier is not an email address.
	ErrInvalidIdentifier = errors.New("auth: identifier must be a valid email")
	// ErrInvalidCredentials indicates the secret did not verify or the account is unusable.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountNotFound is returned by repositories for unknown identifiers.
	ErrAccountNotFound = errors.New("auth: account not found")
	// ErrNotInitialized is returned when the store is used before Init.
	ErrNotInitialized = errors.New("auth: store not initialized")
	// ErrInvalidRole is returned for role names outside the known set.
	ErrInvalidRole = errors.New("auth: unknown role")
	// ErrStoreClosed is returned by mutators after Dispose.
	ErrStoreClosed = errors.New("auth: store disposed")
)
