package sync

import (
	"sync"

	"github.com/synk/client/internal/domain/entities"
)

// Entity is anything that can live in a normalized collection
type Entity interface {
	EntityID() entities.ID
}

// MergeFunc reconciles a remote update with the locally held copy of the
// same entity. It returns the item that should be stored.
type MergeFunc[T Entity] func(existing, incoming T) T

// Collection is a normalized, id-keyed set of entities. Remote events are
// applied idempotently: a create for a known id and an update for an
// unknown id are both dropped, and a delete for an unknown id does
// nothing. Listings keep bulk-load order with newly created entities
// placed first.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	items map[entities.ID]T
	order []entities.ID
	merge MergeFunc[T]
}

// NewCollection creates an empty collection
func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{items: map[entities.ID]T{}}
}

// NewMergedCollection creates a collection that reconciles remote updates
// through merge before storing them
func NewMergedCollection[T Entity](merge MergeFunc[T]) *Collection[T] {
	return &Collection[T]{items: map[entities.ID]T{}, merge: merge}
}

// Replace swaps the entire contents for the given items. Later duplicates
// of an id win, matching last-write semantics of a bulk load.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[entities.ID]T, len(items))
	c.order = c.order[:0]
	for _, item := range items {
		id := item.EntityID()
		if _, seen := c.items[id]; !seen {
			c.order = append(c.order, id)
		}
		c.items[id] = item
	}
}

// ApplyCreated inserts a newly created entity at the front of the
// listing order. When the id is already present the incoming payload is
// dropped and the stored item is kept; the return value reports whether
// the collection changed.
func (c *Collection[T]) ApplyCreated(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	if _, exists := c.items[id]; exists {
		return false
	}
	c.items[id] = item
	c.order = append([]entities.ID{id}, c.order...)
	return true
}

// ApplyUpdated replaces the stored entity with the incoming one. An update
// for an id the collection does not hold is dropped.
func (c *Collection[T]) ApplyUpdated(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	existing, ok := c.items[id]
	if !ok {
		return false
	}
	if c.merge != nil {
		item = c.merge(existing, item)
	}
	c.items[id] = item
	return true
}

// ApplyDeleted removes the entity with the given id, if held
func (c *Collection[T]) ApplyDeleted(id entities.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Upsert stores the entity whether or not the id is already held. Local
// mutations use it so a create confirmed by the server lands even when a
// realtime frame arrived first.
func (c *Collection[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	if _, exists := c.items[id]; !exists {
		c.order = append([]entities.ID{id}, c.order...)
	}
	c.items[id] = item
}

// Get returns the entity with the given id
func (c *Collection[T]) Get(id entities.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

// All returns the held entities in listing order
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Len returns the number of held entities
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
