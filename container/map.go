package container

import (
	"iter"
	"sync"
)

// Map is a concurrency-safe map guarded by a read-write mutex.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewMap creates an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		items: make(map[K]V),
	}
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	return v, ok
}

// Set stores value under key, silently replacing any existing entry.
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
}

// GetOrSet returns the value stored under key, computing and storing one
// via fn when the key is absent. The boolean reports whether the value was
// already present.
//
// fn runs without the lock held, so it may touch the same map. Under
// concurrent calls for one absent key, fn may run more than once; exactly
// one result is stored and returned to all callers.
func (m *Map[K, V]) GetOrSet(key K, fn func() V) (V, bool) {
	m.mu.RLock()
	v, ok := m.items[key]
	m.mu.RUnlock()

	if ok {
		return v, true
	}

	candidate := fn()

	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.items[key]; ok {
		return v, true
	}

	m.items[key] = candidate

	return candidate, false
}

// Delete removes the entry under key, reporting whether it existed.
func (m *Map[K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.items[key]
	if ok {
		delete(m.items, key)
	}

	return ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.items[key]
	return ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.items)
}

// Keys iterates over a snapshot of the keys.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.mu.RLock()
		keys := make([]K, 0, len(m.items))
		for k := range m.items {
			keys = append(keys, k)
		}
		m.mu.RUnlock()

		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over a snapshot of the values.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		m.mu.RLock()
		values := make([]V, 0, len(m.items))
		for _, v := range m.items {
			values = append(values, v)
		}
		m.mu.RUnlock()

		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}

// Items iterates over a snapshot of the key/value pairs.
func (m *Map[K, V]) Items() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		type entry struct {
			key   K
			value V
		}

		m.mu.RLock()
		entries := make([]entry, 0, len(m.items))
		for k, v := range m.items {
			entries = append(entries, entry{key: k, value: v})
		}
		m.mu.RUnlock()

		for _, e := range entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}
