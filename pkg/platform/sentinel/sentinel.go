package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and outbound clients
// return these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store or cache
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: upstream provider or cache temporarily unavailable
// - ErrStale: an async response arrived after its trigger was superseded
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrStale        = errors.New("stale response")
)
