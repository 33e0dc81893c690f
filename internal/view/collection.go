// Package view holds the in-memory page containers that sit between the façade and a client.
//
// Each container owns one or more Collections. Collections are filled by a fetch and afterwards
// only mutated once the façade has confirmed a write; nothing is applied optimistically before
// confirmation and nothing is re-sorted.
package view

import (
	"context"
	"log/slog"
	"sync"

	"studyhub/internal/middleware"
)

// State is the lifecycle of a Collection.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Viewer reports the signed-in user, 0 when signed out. *session.Context satisfies it.
type Viewer interface {
	UserID() uint
}

// Fetcher loads a collection's full contents.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Collection is an ordered list of records with a load state.
type Collection[T any] struct {
	name  string
	fetch Fetcher[T]

	mu    sync.RWMutex
	state State
	items []T
	// gen is bumped by every load so that a slow fetch cannot overwrite a newer one.
	gen uint64
}

// NewCollection returns an uninitialized collection named name (used in logs).
func NewCollection[T any](name string, fetch Fetcher[T]) *Collection[T] {
	return &Collection[T]{name: name, fetch: fetch}
}

// Load fetches the collection: Uninitialized or Ready -> Loading -> Ready.
// A failed fetch is logged and leaves the collection Ready and empty.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = Loading
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	items, err := c.fetch(ctx)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Error fetching "+c.name, slog.String("error", err.Error()))
		items = nil
	}
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.items = items
		c.state = Ready
	}
	return err
}

// Refresh reloads the collection.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Collection[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// cloner is implemented by records holding slices, such as models.PostDetails.
type cloner[T any] interface {
	Clone() T
}

func detach[T any](item T) T {
	if c, ok := any(item).(cloner[T]); ok {
		return c.Clone()
	}
	return item
}

// Items returns a copy of the records in order. Records implementing Clone are deep-copied,
// so callers may modify the result freely.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = detach(item)
	}
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Empty reports whether the collection is loaded and has no records.
func (c *Collection[T]) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == Ready && len(c.items) == 0
}

// Find returns the first record matching match.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if match(item) {
			return detach(item), true
		}
	}
	var zero T
	return zero, false
}

// Update applies mutate in place to every record matching match and reports whether any matched.
func (c *Collection[T]) Update(match func(T) bool, mutate func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	found := false
	for i := range c.items {
		if match(c.items[i]) {
			mutate(&c.items[i])
			found = true
		}
	}
	return found
}

// Prepend inserts item at the front.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// Append inserts item at the back.
func (c *Collection[T]) Append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Upsert replaces the first record matching match with item, or appends item.
func (c *Collection[T]) Upsert(match func(T) bool, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if match(c.items[i]) {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// Remove drops every record matching match.
func (c *Collection[T]) Remove(match func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	for _, item := range c.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

// logFailure records a façade failure for an action that left the view unchanged.
func logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	middleware.Logger.ErrorContext(ctx, msg, append(attrs, slog.String("error", err.Error()))...)
}
