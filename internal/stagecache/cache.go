// Package stagecache holds the per-simulation stage snapshots that the
// spectra endpoints read back after a run. It is a capacity-bounded
// ordered map: a hash index for O(1) lookup plus an insertion-order
// list for O(1) eviction of the oldest entry.
//
// Only insertion refreshes an entry's position. Reads do not protect an
// entry from eviction; a stale simulation id simply turns into a
// not-found error and the caller re-runs the simulation.
package stagecache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
)

// DefaultCapacity bounds the cache when no explicit capacity is given.
const DefaultCapacity = 16

// ErrNotFound is returned when a simulation id or stage is absent.
var ErrNotFound = errors.New("not found")

type entry struct {
	id     string
	stages map[Stage]Snapshot
}

// Cache is an insertion-order LRU of simulation id to stage snapshots.
// Safe for concurrent use by request handlers.
type Cache struct {
	mu       sync.Mutex
	capacity int
	index    map[string]*list.Element
	order    *list.List
}

// New creates a cache bounded to the given capacity. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Store inserts all stages for a simulation id atomically. Re-storing
// an existing id moves it to the back of the eviction order. When the
// insert pushes the cache past capacity, the oldest-inserted entry is
// evicted.
func (c *Cache) Store(id string, stages map[Stage]Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[id]; ok {
		c.order.Remove(elem)
		delete(c.index, id)
	}

	c.index[id] = c.order.PushBack(&entry{id: id, stages: stages})

	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*entry).id)
	}
}

// Get returns the snapshot for one stage of a cached simulation.
func (c *Cache) Get(id string, stage Stage) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("simulation %q: %w", id, ErrNotFound)
	}
	snapshot, ok := elem.Value.(*entry).stages[stage]
	if !ok {
		return Snapshot{}, fmt.Errorf("simulation %q stage %q: %w", id, stage, ErrNotFound)
	}
	return snapshot, nil
}

// Contains reports whether a simulation id is currently cached.
func (c *Cache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[id]
	return ok
}

// Len returns the number of cached simulations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
