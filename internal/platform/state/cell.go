// Package state holds shared snapshots mutated by independent handlers.
//
// A Cell never edits its value in place: Update reads the latest snapshot,
// computes the next one and swaps it in while holding the writer lock, so a
// value returned by Load stays valid and unchanged for as long as the caller
// keeps it. Update functions must therefore copy any slice or map they change.
package state

import "sync"

type Cell[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Update replaces the snapshot with fn(previous) and returns the new value.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
	return c.value
}

// UpdateResult is Update for transitions that also report a derived result.
func UpdateResult[T, R any](c *Cell[T], fn func(T) (T, R)) R {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, result := fn(c.value)
	c.value = next
	return result
}
