package cachestore

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// UserCollection is the privileged collection holding user records. The
// local store is never treated as a source of truth for credentials, so
// responses from this collection are excluded from every cache write.
const UserCollection = "user"

// Store orchestrates one logical collection across a local and a remote
// backend. It is safe for concurrent use; independent operations may be in
// flight at the same time and are not ordered relative to each other.
type Store struct {
	collection string
	local      Local
	remote     Remote
	log        zerolog.Logger

	mu       sync.RWMutex
	defaults Options
}

// Option customizes a Store at construction time.
type Option func(*Store)

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithDefaults seeds the instance defaults, equivalent to calling
// [Store.Configure] right after New, except that an invalid policy panics
// instead of returning an error. Reserve it for static configuration.
func WithDefaults(defaults Options) Option {
	return func(s *Store) {
		if defaults.Policy != PolicyDefault && !defaults.Policy.Valid() {
			panic("cachestore: " + ErrUnknownPolicy.Error())
		}
		s.defaults = defaults
	}
}

// New creates a Store for one collection backed by the given adapters.
func New(collection string, local Local, remote Remote, opts ...Option) *Store {
	s := &Store{
		collection: collection,
		local:      local,
		remote:     remote,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("collection", collection).Logger()
	return s
}

// Collection returns the collection name this Store orchestrates.
func (s *Store) Collection() string {
	return s.collection
}

// Configure replaces the instance defaults. Sub-options are additionally
// forwarded to the remote adapter's own configuration, matching the
// adapter contract that its defaults are kept current. An invalid policy
// is rejected and leaves the previous defaults in place.
func (s *Store) Configure(defaults Options) error {
	if defaults.Policy != PolicyDefault && !defaults.Policy.Valid() {
		return ErrUnknownPolicy
	}
	s.mu.Lock()
	s.defaults = defaults
	s.mu.Unlock()
	if defaults.Store != nil {
		s.remote.Configure(defaults.Store)
	}
	return nil
}

// --------------------------------------------------
// Logical operations
// --------------------------------------------------

// Aggregate runs an aggregation spec through the read orchestrator.
func (s *Store) Aggregate(ctx context.Context, spec any, opts ...Options) (*Result, error) {
	return s.dispatch(ctx, Operation{KindAggregate, spec}, callOptions(opts))
}

// Query reads a single object by id.
func (s *Store) Query(ctx context.Context, id string, opts ...Options) (*Result, error) {
	return s.dispatch(ctx, Operation{KindQuery, id}, callOptions(opts))
}

// QueryWithQuery reads the set of objects matching a query spec.
func (s *Store) QueryWithQuery(ctx context.Context, query any, opts ...Options) (*Result, error) {
	return s.dispatch(ctx, Operation{KindQueryWithQuery, query}, callOptions(opts))
}

// Save writes an object to the remote store and, policy permitting,
// mirrors the response into the local cache. Writes are never served from
// the local store.
func (s *Store) Save(ctx context.Context, object any, opts ...Options) (*Result, error) {
	return s.dispatch(ctx, Operation{KindSave, object}, callOptions(opts))
}

// Remove deletes an object on the remote store and invalidates its
// single-object cache entry.
func (s *Store) Remove(ctx context.Context, object any, opts ...Options) (*Result, error) {
	return s.dispatch(ctx, Operation{KindRemove, object}, callOptions(opts))
}

// RemoveWithQuery deletes the objects matching a query spec on the remote
// store and invalidates the matching query-result cache slot.
func (s *Store) RemoveWithQuery(ctx context.Context, query any, opts ...Options) (*Result, error) {
	return s.dispatch(ctx, Operation{KindRemoveWithQuery, query}, callOptions(opts))
}

// Login delegates straight to the remote backend, bypassing orchestration
// and the callback contract entirely.
func (s *Store) Login(ctx context.Context, credentials any) (*Result, error) {
	return s.remote.Login(ctx, credentials)
}

// Logout delegates straight to the remote backend.
func (s *Store) Logout(ctx context.Context) error {
	return s.remote.Logout(ctx)
}

// --------------------------------------------------
// Dispatch
// --------------------------------------------------

func callOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

// dispatch merges options, resolves the policy, and hands the operation to
// the read or write orchestrator. The returned pair mirrors the terminal
// callback: the first success, or the surfaced error.
func (s *Store) dispatch(ctx context.Context, op Operation, call Options) (*Result, error) {
	eo, err := s.merge(call)
	if err != nil {
		eo.fail(err)
		eo.complete()
		return nil, err
	}

	s.log.Debug().
		Stringer("op", op.Kind).
		Stringer("policy", eo.policy).
		Msg("dispatching")

	if op.Kind.IsRead() {
		return s.read(ctx, op, eo)
	}
	return s.write(ctx, op, eo)
}

// pick returns the primary and secondary backend for a read.
func (s *Store) pick(policy Policy) (primary, secondary Backend) {
	if policy.networkFirst() {
		return s.remote, s.local
	}
	return s.local, s.remote
}
