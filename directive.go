package cachestore

// Directive describes how the local store must be mutated to reflect a
// successful remote write. A nil Value invalidates the slot instead of
// writing it.
type Directive struct {
	Kind  Kind
	Key   string
	Value any
}

// deriveDirective maps a completed write onto its local-store mutation.
// It is pure: the decision depends only on the operation, the remote
// response, and the collection name.
//
//   - Remove invalidates the single-object entry of the removed object.
//   - RemoveWithQuery invalidates the query-result slot for the spec.
//   - Save mirrors the remote response into the single-object slot, keyed
//     by the response's identity — unless the response is empty, carries
//     no identity, or belongs to the privileged user collection, in which
//     case nothing is cached.
func deriveDirective(op Operation, res *Result, collection string) (Directive, bool) {
	switch op.Kind {
	case KindRemove:
		id, ok := IdentityOf(op.Arg)
		if !ok {
			return Directive{}, false
		}
		return Directive{Kind: KindQuery, Key: id}, true

	case KindRemoveWithQuery:
		return Directive{Kind: KindQueryWithQuery, Key: CacheKey(KindQueryWithQuery, op.Arg)}, true

	case KindSave:
		if collection == UserCollection || res == nil || res.Value == nil {
			return Directive{}, false
		}
		id, ok := IdentityOf(res.Value)
		if !ok {
			return Directive{}, false
		}
		return Directive{Kind: KindQuery, Key: id, Value: res.Value}, true
	}
	return Directive{}, false
}
