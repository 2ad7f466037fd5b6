package cachestore

import (
	"encoding/json"
	"fmt"
)

// idField is the identity field of objects decoded from the wire.
const idField = "_id"

// Identifier lets typed objects expose their identity without relying on
// the wire representation.
type Identifier interface {
	EntityID() string
}

// IdentityOf extracts the identity of an object: an [Identifier]
// implementation wins, otherwise the "_id" field of a decoded map is
// used. It reports false when no identity can be determined.
func IdentityOf(v any) (string, bool) {
	switch t := v.(type) {
	case Identifier:
		id := t.EntityID()
		return id, id != ""
	case map[string]any:
		if id, ok := t[idField].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// CacheKey canonicalizes an operation argument into the local-store key
// for that operation's cache slot. Ids pass through unchanged; query and
// aggregation specs are serialized deterministically (JSON orders map
// keys), so equal specs always address the same slot. Local backends must
// key their read methods with the same function for maintenance writes to
// be visible.
func CacheKey(kind Kind, arg any) string {
	if kind == KindQuery {
		if id, ok := arg.(string); ok {
			return id
		}
	}
	b, err := json.Marshal(arg)
	if err != nil {
		// Unserializable specs still need a stable-enough slot.
		return fmt.Sprintf("%v", arg)
	}
	return string(b)
}
