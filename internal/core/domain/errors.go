package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVaultNotFound indicates a declared notes vault path does not exist.
	ErrVaultNotFound = errors.New("vault path does not exist")

	// ErrNotRepository indicates a path lacks the expected version-control
	// marker.
	ErrNotRepository = errors.New("not a git repository")

	// ErrTargetAuthorMissing indicates commit ingestion was requested
	// without a configured target author. Surfaced before any work is
	// performed.
	ErrTargetAuthorMissing = errors.New("target author name and email must be configured")

	// ErrWorkspaceConflict indicates the sample workspace contains data
	// that is not a recognised seed and would be clobbered.
	ErrWorkspaceConflict = errors.New("sample workspace already exists and is not a recognised seed")
)
