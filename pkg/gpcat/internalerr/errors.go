package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrFetch             = errors.New("fetch failed")
	ErrUnexpectedContent = errors.New("unexpected content")
	ErrIntegrity         = errors.New("data integrity violation")
)
