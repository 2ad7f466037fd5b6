package cachestore

import "context"

// read drives the read-path state machine: primary call, then — depending
// on the resolved policy and the primary's outcome — a secondary call for
// fallback or dual-read, then cache maintenance, then completion. The
// caller's terminal notification is never delayed by maintenance; only
// completion waits for it.
func (s *Store) read(ctx context.Context, op Operation, eo effectiveOptions) (*Result, error) {
	primary, secondary := s.pick(eo.policy)

	res, err := invoke(ctx, primary, op, eo.sub)
	if err != nil {
		if !eo.policy.fallback() {
			eo.fail(err)
			eo.complete()
			return nil, err
		}
		s.log.Debug().
			Stringer("op", op.Kind).
			Err(err).
			Msg("primary read failed, falling back")
		return s.readFallback(ctx, op, eo, secondary)
	}

	// First success notification. Under most policies it is the only one.
	eo.success(res)

	if eo.policy.dualRead() {
		sec, serr := invoke(ctx, secondary, op, eo.sub)
		if serr != nil {
			// Already succeeded once; the secondary failure is
			// suppressed but still settles the operation.
			s.log.Debug().
				Stringer("op", op.Kind).
				Err(serr).
				Msg("secondary read failed")
			eo.complete()
			return res, nil
		}
		if eo.policy == PolicyBoth {
			eo.success(sec)
		}
		s.maintain(ctx, op, sec, eo.policy)
		eo.complete()
		return res, nil
	}

	s.maintain(ctx, op, res, eo.policy)
	eo.complete()
	return res, nil
}

// readFallback consults the secondary backend after a primary failure.
// Its outcome, whichever way it goes, is the caller's terminal
// notification.
func (s *Store) readFallback(ctx context.Context, op Operation, eo effectiveOptions, secondary Backend) (*Result, error) {
	res, err := invoke(ctx, secondary, op, eo.sub)
	if err != nil {
		eo.fail(err)
		eo.complete()
		return nil, err
	}
	eo.success(res)
	s.maintain(ctx, op, res, eo.policy)
	eo.complete()
	return res, nil
}

// maintain writes a network-sourced response back into the local store,
// keyed by the operation. Maintenance is best-effort: failures are logged
// and swallowed, they only gate the completion notification, never the
// caller's result.
func (s *Store) maintain(ctx context.Context, op Operation, res *Result, policy Policy) {
	if !policy.cacheUpdate() || res == nil || !res.FromNetwork {
		return
	}
	// Credentials never reach the local store.
	if s.collection == UserCollection {
		return
	}
	if err := s.local.Put(ctx, op.Kind, CacheKey(op.Kind, op.Arg), res.Value); err != nil {
		s.log.Warn().
			Stringer("op", op.Kind).
			Err(err).
			Msg("cache maintenance failed")
	}
}
