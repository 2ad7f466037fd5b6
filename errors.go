package cachestore

import "errors"

var (
	// ErrUnknownPolicy is surfaced when a call or Configure carries a
	// policy value outside the enumerated set. Typos are rejected rather
	// than silently mapped to a default.
	ErrUnknownPolicy = errors.New("cachestore: unknown cache policy")

	// ErrNotFound is returned by backends when a read matches nothing.
	// The orchestrator treats it like any other backend failure, which is
	// what allows a local miss to fall through to the network under
	// fallback-enabled policies.
	ErrNotFound = errors.New("cachestore: not found")
)
