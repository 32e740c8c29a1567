package sync

import "sync"

// Map is a type-safe concurrent map using generics.
//
// It uses a RWMutex for safe concurrent access, which is more efficient
// than sync.Map for workloads with frequent reads and infrequent writes.
type Map[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// NewMap creates a new type-safe concurrent map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value stored in the map for a key, or the zero value
// if no value is present. The ok result indicates whether value was found.
func (sm *Map[K, V]) Load(key K) (value V, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.m[key]
	return
}

// LoadOrStore returns the existing value for the key if present.
// Otherwise, it stores and returns the given value.
// The loaded result is true if the value was loaded, false if stored.
func (sm *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	// First try with read lock.
	sm.mu.RLock()
	actual, loaded = sm.m[key]
	sm.mu.RUnlock()
	if loaded {
		return actual, true
	}

	// Need to store - acquire write lock.
	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Check again in case another goroutine stored a value
	// between releasing RLock and acquiring Lock.
	actual, loaded = sm.m[key]
	if loaded {
		return actual, true
	}

	sm.m[key] = value
	return value, false
}
