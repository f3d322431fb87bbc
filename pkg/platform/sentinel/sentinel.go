package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors.
//
//   - ErrNotFound: record does not exist
//   - ErrConflict: record already exists where a create-if-absent was requested
//   - ErrCorrupt: record exists but cannot be decoded
//   - ErrInvalidState: entity in wrong state for the requested operation
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrCorrupt      = errors.New("corrupt record")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
