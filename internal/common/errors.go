// Package common defines the error taxonomy and shared constants used by
// the versioning engine, the record store, and the HTTP transport. Callers
// match these with errors.Is; the transport layer is the only place that
// translates them into wire ErrorCodes and HTTP statuses.
package common

import "errors"

var (
	// ErrConflict signals that a conditional write affected zero rows: the
	// caller's view of a key (or the store's global version) was stale.
	// It is not a bug and must not be logged as one.
	ErrConflict = errors.New("conflict")

	// ErrInvalidRequest signals a malformed payload, an undecodable body,
	// a missing required field, or an illegal argument (e.g. empty
	// store_id, a key exceeding the length limit).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoSuchKey signals a get miss on a non-reserved key.
	ErrNoSuchKey = errors.New("no such key")

	// ErrAuth signals that the authorizer rejected the request: missing,
	// malformed, expired, or otherwise invalid credentials.
	ErrAuth = errors.New("unauthorized")

	// ErrInternal covers backend I/O failures, pool exhaustion, and any
	// other unexpected state.
	ErrInternal = errors.New("internal error")
)
