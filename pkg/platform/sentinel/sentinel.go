package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and origins return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: asset or version does not exist in the store
// - ErrUnavailable: origin or store cannot be reached right now
//
// For validation errors (bad input, unknown codes), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
