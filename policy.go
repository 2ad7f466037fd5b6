package cachestore

// Policy selects how a [Store] routes reads and writes between the local
// and remote backends.
type Policy int

const (
	// PolicyDefault is the zero value. It is not a policy of its own: a
	// call carrying PolicyDefault resolves to the instance default, and an
	// instance that was never configured resolves to [PolicyNetworkFirst].
	PolicyDefault Policy = iota

	// PolicyNoCache always reads from the network and never touches the
	// local store.
	PolicyNoCache

	// PolicyCacheOnly resolves entirely from the local store. The network
	// is never consulted, not even on a local miss.
	PolicyCacheOnly

	// PolicyCacheFirst serves from the local store, then refreshes the
	// local store from the network in the background. The caller sees a
	// single response.
	PolicyCacheFirst

	// PolicyNetworkFirst serves from the network, falling back to the
	// local store when the network call fails. Network responses are
	// written back into the local store.
	PolicyNetworkFirst

	// PolicyBoth delivers the local response and then the network
	// response, in that order, through two Success notifications. The
	// network response also refreshes the local store.
	PolicyBoth
)

// Valid reports whether p is one of the five enumerated policies.
// PolicyDefault is not valid on its own; it is resolved away during
// options merging.
func (p Policy) Valid() bool {
	return p >= PolicyNoCache && p <= PolicyBoth
}

func (p Policy) String() string {
	switch p {
	case PolicyDefault:
		return "default"
	case PolicyNoCache:
		return "no-cache"
	case PolicyCacheOnly:
		return "cache-only"
	case PolicyCacheFirst:
		return "cache-first"
	case PolicyNetworkFirst:
		return "network-first"
	case PolicyBoth:
		return "both"
	}
	return "unknown"
}

// --------------------------------------------------
// Policy resolution
// --------------------------------------------------

// networkFirst reports whether the remote backend is the primary for reads.
func (p Policy) networkFirst() bool {
	return p == PolicyNoCache || p == PolicyNetworkFirst
}

// dualRead reports whether the secondary backend is also consulted after a
// primary success.
func (p Policy) dualRead() bool {
	return p == PolicyCacheFirst || p == PolicyBoth
}

// fallback reports whether the secondary backend is consulted after a
// primary failure.
func (p Policy) fallback() bool {
	return p.dualRead() || p == PolicyNetworkFirst
}

// cacheUpdate reports whether network responses are written back into the
// local store.
func (p Policy) cacheUpdate() bool {
	return p == PolicyCacheFirst || p == PolicyNetworkFirst || p == PolicyBoth
}
