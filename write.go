package cachestore

import "context"

// write drives the write path: a single authoritative remote write, then a
// derived local-store update or invalidation. There is no fallback; writes
// are never served from the local store.
func (s *Store) write(ctx context.Context, op Operation, eo effectiveOptions) (*Result, error) {
	res, err := invoke(ctx, s.remote, op, eo.sub)
	if err != nil {
		eo.fail(err)
		eo.complete()
		return nil, err
	}

	eo.success(res)

	if eo.policy.cacheUpdate() {
		if d, ok := deriveDirective(op, res, s.collection); ok {
			// Directive outcome is swallowed; it only gates completion.
			if perr := s.local.Put(ctx, d.Kind, d.Key, d.Value); perr != nil {
				s.log.Warn().
					Stringer("op", op.Kind).
					Stringer("slot", d.Kind).
					Err(perr).
					Msg("cache directive failed")
			}
		}
	}

	eo.complete()
	return res, nil
}
