package container

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// ErrIndexOutOfRange is returned by positional List operations when the
// index does not address an element.
var ErrIndexOutOfRange = errors.New("index out of range")

// List is a concurrency-safe slice guarded by a read-write mutex. Element
// order is insertion order.
type List[T comparable] struct {
	mu    sync.RWMutex
	items []T
}

// NewList creates an empty List.
func NewList[T comparable]() *List[T] {
	return &List[T]{}
}

// Append adds values to the end of the list.
func (l *List[T]) Append(values ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, values...)
}

// At returns the element at index i.
func (l *List[T]) At(i int) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(l.items))
	}

	return l.items[i], nil
}

// Set replaces the element at index i.
func (l *List[T]) Set(i int, value T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(l.items))
	}

	l.items[i] = value

	return nil
}

// Remove deletes the first occurrence of value, preserving the order of the
// remaining elements. It reports whether an element was removed.
func (l *List[T]) Remove(value T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.Index(l.items, value)
	if i < 0 {
		return false
	}

	l.items = slices.Delete(l.items, i, i+1)

	return true
}

// Contains reports whether value is present.
func (l *List[T]) Contains(value T) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Contains(l.items, value)
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.items)
}

// Clear removes all elements.
func (l *List[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
}

// Snapshot returns a copy of the elements in insertion order.
func (l *List[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.items)
}

// All iterates over a snapshot of the elements in insertion order.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range l.Snapshot() {
			if !yield(v) {
				return
			}
		}
	}
}
