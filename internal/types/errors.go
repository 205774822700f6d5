package types

import "errors"

// Error kinds surfaced by the core. Callers match with errors.Is and
// decide how to render them; wrapped detail stays attached via %w.
var (
	// ErrInvalidConfiguration marks parameters that cannot make
	// progress, such as a chunk overlap at or above the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput marks malformed caller input, such as a blank
	// document at ingestion.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an operation referencing a document/tenant
	// pairing that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageFailure marks a failed read or write against the
	// durable store.
	ErrStorageFailure = errors.New("storage failure")
)
