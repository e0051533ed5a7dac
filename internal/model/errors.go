package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoIdentifiers   = errors.New("session has no identifiers")

	// Ledger errors
	ErrInvalidIdentifiers = errors.New("invalid identifiers")
	ErrInvalidActionKind  = errors.New("invalid action kind")
	ErrActionNotFound     = errors.New("action not found")
	ErrNotImplemented     = errors.New("action revocation is not implemented")

	// Pending whitelist errors
	ErrPendingNotFound = errors.New("pending whitelist request not found")
)
