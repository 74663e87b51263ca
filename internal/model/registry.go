package model

// EntityKind namespaces registry keys so that a day date and an event id
// that happen to share a string never resolve to each other.
type EntityKind string

const (
	EntityDay    EntityKind = "day"
	EntityRoom   EntityKind = "room"
	EntityEvent  EntityKind = "event"
	EntityPerson EntityKind = "person"
)

type registryKey struct {
	kind EntityKind
	key  string
}

// initializer is implemented by entities that need their containers set up
// exactly once, right after the factory built them.
type initializer interface {
	initContainers()
}

// Registry deduplicates entities of one Conference by (kind, key).
//
// It is the single source of truth for "have we already seen this day,
// room, event or person". Not safe for concurrent use; ingestion is a
// single pass on one goroutine.
type Registry struct {
	entries map[registryKey]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[registryKey]any)}
}

// Len reports how many entities have been registered.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Resolve returns the instance registered under (kind, key). On the first
// call for a pair it builds the instance with factory, runs its container
// initializer and caches it; later calls return the cached instance and
// never invoke factory again. The boolean reports whether the instance was
// created by this call.
func Resolve[T any](r *Registry, kind EntityKind, key string, factory func() *T) (*T, bool) {
	k := registryKey{kind: kind, key: key}
	if v, ok := r.entries[k]; ok {
		return v.(*T), false
	}

	inst := factory()
	if in, ok := any(inst).(initializer); ok {
		in.initContainers()
	}
	r.entries[k] = inst
	return inst, true
}

// Lookup returns the instance registered under (kind, key) without creating it.
func Lookup[T any](r *Registry, kind EntityKind, key string) (*T, bool) {
	v, ok := r.entries[registryKey{kind: kind, key: key}]
	if !ok {
		return nil, false
	}
	inst, ok := v.(*T)
	return inst, ok
}
