package cachestore

// Kind identifies one of the six logical operations a backend implements.
type Kind int

const (
	KindAggregate Kind = iota
	KindQuery
	KindQueryWithQuery
	KindSave
	KindRemove
	KindRemoveWithQuery
)

// IsRead reports whether the kind is served by the read orchestrator.
// Write kinds always target the remote backend.
func (k Kind) IsRead() bool {
	switch k {
	case KindAggregate, KindQuery, KindQueryWithQuery:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case KindAggregate:
		return "aggregate"
	case KindQuery:
		return "query"
	case KindQueryWithQuery:
		return "queryWithQuery"
	case KindSave:
		return "save"
	case KindRemove:
		return "remove"
	case KindRemoveWithQuery:
		return "removeWithQuery"
	}
	return "unknown"
}

// Operation pairs a kind with its argument: an id for KindQuery, a query
// spec for KindQueryWithQuery and KindRemoveWithQuery, an aggregation spec
// for KindAggregate, or an object for KindSave and KindRemove.
type Operation struct {
	Kind Kind
	Arg  any
}

// Result is a backend response together with its provenance. FromNetwork
// is set by the backend that produced the response and drives cache
// maintenance: only network-sourced responses are written back into the
// local store.
type Result struct {
	Value       any
	FromNetwork bool
}
