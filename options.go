package cachestore

// Options configures a Store instance or a single call. On a call, any
// field left at its zero value falls back to the instance default, which
// in turn falls back to the library default. Callback slots that remain
// unset after merging become no-ops, so the orchestrator can always invoke
// them unconditionally.
type Options struct {
	// Policy overrides the instance policy for this call.
	Policy Policy

	// Store carries opaque sub-options for the backends. A call-site
	// value replaces the instance value wholesale; the two are not
	// deep-merged.
	Store SubOptions

	// Success receives each successful response. Under [PolicyBoth] it
	// fires twice per read, local response first.
	Success func(*Result)

	// Error receives the single terminal failure of an operation. When a
	// fallback was attempted and also failed, it carries the fallback's
	// error.
	Error func(error)

	// Complete fires exactly once per operation, after any background
	// cache maintenance has settled. It is the universal "settled" signal
	// and is safe to use for unblocking regardless of outcome.
	Complete func()
}

// effectiveOptions is the immutable per-call view produced by merging the
// library defaults, the instance defaults, and the call-site overrides.
// It is constructed fresh for every operation and never mutated, so
// concurrent operations on the same Store cannot observe each other's
// configuration.
type effectiveOptions struct {
	policy   Policy
	sub      SubOptions
	success  func(*Result)
	fail     func(error)
	complete func()
}

func nopSuccess(*Result) {}
func nopError(error)     {}
func nopComplete()       {}

// merge layers call over the instance defaults and validates the resolved
// policy. An out-of-range policy is a caller error, not a silent default.
func (s *Store) merge(call Options) (effectiveOptions, error) {
	s.mu.RLock()
	defaults := s.defaults
	s.mu.RUnlock()

	eo := effectiveOptions{
		policy:   call.Policy,
		sub:      call.Store,
		success:  call.Success,
		fail:     call.Error,
		complete: call.Complete,
	}
	if eo.policy == PolicyDefault {
		eo.policy = defaults.Policy
	}
	if eo.policy == PolicyDefault {
		eo.policy = PolicyNetworkFirst
	}
	if eo.sub == nil {
		eo.sub = defaults.Store
	}
	if eo.success == nil {
		eo.success = defaults.Success
	}
	if eo.fail == nil {
		eo.fail = defaults.Error
	}
	if eo.complete == nil {
		eo.complete = defaults.Complete
	}
	if eo.success == nil {
		eo.success = nopSuccess
	}
	if eo.fail == nil {
		eo.fail = nopError
	}
	if eo.complete == nil {
		eo.complete = nopComplete
	}

	if !eo.policy.Valid() {
		return eo, ErrUnknownPolicy
	}
	return eo, nil
}
