package cachestore

import "context"

// SubOptions are opaque backend options. The orchestrator never inspects
// them; it only layers call-site values over instance defaults and hands
// the winner to the backend together with every call.
type SubOptions map[string]any

// Backend is the uniform operation surface the orchestrator drives. Both
// the local and the remote store implement it; the orchestrator never
// inspects backend internals.
//
// Each method performs a single attempt: the orchestrator never retries a
// failed backend call. Implementations set [Result.FromNetwork] to tell
// the orchestrator whether the response is eligible for cache maintenance.
type Backend interface {
	Aggregate(ctx context.Context, spec any, sub SubOptions) (*Result, error)
	Query(ctx context.Context, id string, sub SubOptions) (*Result, error)
	QueryWithQuery(ctx context.Context, query any, sub SubOptions) (*Result, error)
	Save(ctx context.Context, object any, sub SubOptions) (*Result, error)
	Remove(ctx context.Context, object any, sub SubOptions) (*Result, error)
	RemoveWithQuery(ctx context.Context, query any, sub SubOptions) (*Result, error)
}

// Local is the on-device store. Put is the maintenance entry point: it
// writes value into the cache slot identified by a read kind and key, or
// deletes the slot when value is nil. Keys are produced by [CacheKey], so
// a Local implementation must key its own read methods the same way for
// maintenance writes to be visible to later reads.
//
// Independent logical operations may be in flight concurrently on the same
// Store, so a Local implementation must tolerate concurrent reads and
// writes.
type Local interface {
	Backend
	Put(ctx context.Context, kind Kind, key string, value any) error
}

// Remote is the network store. Configure replaces the adapter's default
// sub-options; the Store forwards instance sub-options to it once during
// [Store.Configure], while per-call sub-options travel with each call.
// Login and Logout back the Store's pass-through operations and are never
// orchestrated.
type Remote interface {
	Backend
	Configure(sub SubOptions)
	Login(ctx context.Context, credentials any) (*Result, error)
	Logout(ctx context.Context) error
}

// invoke dispatches one operation to one backend.
func invoke(ctx context.Context, b Backend, op Operation, sub SubOptions) (*Result, error) {
	switch op.Kind {
	case KindAggregate:
		return b.Aggregate(ctx, op.Arg, sub)
	case KindQuery:
		id, _ := op.Arg.(string)
		return b.Query(ctx, id, sub)
	case KindQueryWithQuery:
		return b.QueryWithQuery(ctx, op.Arg, sub)
	case KindSave:
		return b.Save(ctx, op.Arg, sub)
	case KindRemove:
		return b.Remove(ctx, op.Arg, sub)
	case KindRemoveWithQuery:
		return b.RemoveWithQuery(ctx, op.Arg, sub)
	}
	panic("cachestore: invalid operation kind " + op.Kind.String())
}
