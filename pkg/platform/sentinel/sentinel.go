package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, secret backends and directory
// clients return these (optionally wrapped) so services can translate them into
// domain errors:
// - ErrNotFound: entity does not exist in the backing store
// - ErrDuplicate: a lookup expected to be unique matched more than one entity
// - ErrInvalidState: stored data is malformed or in the wrong shape
// - ErrUnavailable: upstream service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
