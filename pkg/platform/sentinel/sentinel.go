package sentinel

import "errors"

// Sentinel errors describe facts about stored records. Stores return them
// (optionally wrapped) and services translate them into coded domain errors.
//
//   - ErrNotFound: the record does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidState: the write would break a stored invariant (e.g. a parent cycle)
//   - ErrUnavailable: a backing service is down or not configured
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
