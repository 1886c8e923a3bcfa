package tempo

// Store is the external data container the scheduler drives. The scheduler
// never caches or copies store contents; systems borrow views for the
// duration of a resume and deferred mutations are applied through the
// command collector after every system has finished.
//
// Implementations do not need to be thread-safe: the runners guarantee that
// two systems with conflicting access declarations are never concurrently
// running, and commands are applied from the scheduler goroutine only.
type Store interface {
	// Column returns the storage column for the component type registered
	// under key, or nil if the store holds no such column.
	Column(key TypeKey) Column

	// Resource returns the resource registered under key.
	Resource(key TypeKey) (any, bool)

	// SetResource stores or replaces the resource under key.
	SetResource(key TypeKey, value any)
}

// Column is an indexable view over every instance of one component type.
type Column interface {
	// Len returns the number of instances.
	Len() int

	// At returns the instance at index.
	At(index int) any

	// Set replaces the instance at index.
	Set(index int, value any)
}
