package tempo

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeKey is a dense identifier for a registered component or resource type.
// Valid keys range from 0 to 255.
//
// Keys double as bit indices in access masks and provide the total order
// used for lock acquisition, so they must come from a single registry per
// scheduler instance.
type TypeKey uint8

// MaxTypes is the maximum number of types a registry can issue keys for.
const MaxTypes = 256

// TypeRegistry issues TypeKey values for Go types. Components and resources
// share one key space; a type used in both roles keeps a single key.
//
// The registry owns its counter: two registries assign keys independently,
// and keys from one registry are meaningless to schedules built on another.
type TypeRegistry struct {
	mu    sync.RWMutex
	keys  map[reflect.Type]TypeKey
	types []reflect.Type
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		keys: make(map[reflect.Type]TypeKey),
	}
}

// Register returns the key for t, issuing a new one on first sight.
func (r *TypeRegistry) Register(t reflect.Type) TypeKey {
	// Fast path: most calls look up types registered during setup.
	r.mu.RLock()
	key, ok := r.keys[t]
	r.mu.RUnlock()
	if ok {
		return key
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if key, ok = r.keys[t]; ok {
		return key
	}
	if len(r.types) >= MaxTypes {
		panic(fmt.Sprintf("tempo: type limit exceeded (max %d types)", MaxTypes))
	}

	key = TypeKey(len(r.types))
	r.keys[t] = key
	r.types = append(r.types, t)
	return key
}

// Lookup returns the key for a previously registered type.
func (r *TypeRegistry) Lookup(t reflect.Type) (TypeKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[t]
	return key, ok
}

// TypeOf returns the type registered under key, or nil if the key has not
// been issued.
func (r *TypeRegistry) TypeOf(key TypeKey) reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(key) >= len(r.types) {
		return nil
	}
	return r.types[key]
}

// Count returns the number of registered types.
func (r *TypeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// KeyFor returns the key for type T, registering it if needed.
func KeyFor[T any](r *TypeRegistry) TypeKey {
	return r.Register(reflect.TypeOf((*T)(nil)).Elem())
}
