// Package cachestore is a policy-driven read/write orchestrator that sits
// between an application and two interchangeable data backends: a durable
// local store and a remote (network) store.
//
// A [Store] is created per logical collection and drives every operation
// through a cache [Policy]. The policy decides which backend is consulted
// first, whether the other backend is tried on failure, whether both are
// consulted, and when the local store is refreshed from network responses.
// Callers observe a single contract regardless of how many backend calls
// were made: exactly one terminal notification through Success or Error,
// and exactly one Complete, per logical operation.
//
// The package ships two reference adapters: [github.com/dalalsunil1986/cachestore/remote]
// (JSON-RPC over WebSocket) and [github.com/dalalsunil1986/cachestore/local]
// (SQLite with CBOR-encoded values). Any pair of implementations of the
// [Local] and [Remote] interfaces can be substituted.
package cachestore
