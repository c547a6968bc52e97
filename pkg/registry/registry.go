// Package registry provides an append-only, ordered collection whose
// entries keep the index they were assigned at insertion.
package registry

import "sync"

// Entry is a value together with its index.
type Entry[T any] struct {
	Index int
	Value T
}

// Ordered is a thread-safe ordered registry. Indices are dense, start at
// zero and never change until Clear.
type Ordered[T any] struct {
	mu    sync.RWMutex
	items []T
}

// NewOrdered creates an empty registry.
func NewOrdered[T any]() *Ordered[T] {
	return &Ordered[T]{}
}

// Add appends value and returns its index.
func (r *Ordered[T]) Add(value T) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, value)
	return len(r.items) - 1
}

// Get returns the value at idx.
func (r *Ordered[T]) Get(idx int) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx < 0 || idx >= len(r.items) {
		var zero T
		return zero, false
	}
	return r.items[idx], true
}

// Len returns the number of entries.
func (r *Ordered[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// List returns a snapshot of all entries in index order.
func (r *Ordered[T]) List() []Entry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry[T], len(r.items))
	for i, v := range r.items {
		entries[i] = Entry[T]{Index: i, Value: v}
	}
	return entries
}

// Find returns the entries for which match reports true, in index order.
// match runs on a snapshot, so it may call back into the registry.
func (r *Ordered[T]) Find(match func(T) bool) []Entry[T] {
	var out []Entry[T]
	for _, e := range r.List() {
		if match(e.Value) {
			out = append(out, e)
		}
	}
	return out
}

// Clear removes all entries. Indices handed out earlier become invalid.
func (r *Ordered[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
