package cache

import (
	"emperror.dev/errors"
	"github.com/go-logr/logr"

	"heaplru/internal/heap"
)

// ErrInvalidCapacity is returned by New when Config.Capacity is not positive.
const ErrInvalidCapacity = errors.Sentinel("cache: capacity must be positive")

// Config controls cache capacity and logging.
//
// Capacity is fixed for the lifetime of the cache. A zero Logger discards
// all output; evictions are logged at V(1).
type Config struct {
	Capacity int
	Logger   logr.Logger
}

// Cache is a bounded key–value cache with least-recently-used eviction.
//
// A min-heap keyed by a logical access clock orders the entries, and a map
// gives key -> heap handle lookup. The heap minimum is always the least
// recently used entry.
//
// Ownership model:
// Cache owns its heap and index. Handles never leave the cache.
//
// Cache is not safe for concurrent use; callers sharing one across
// goroutines must serialize access.
type Cache[K comparable, V any] struct {
	maxEntries int
	entries    *heap.Heap[entry[K, V]]
	index      map[K]heap.Handle

	// clock is the last stamp handed out. It only moves forward.
	clock uint64

	stats Stats
	log   logr.Logger
}

// entry is the value stored in the heap.
// We keep the key here because eviction starts from the heap minimum.
type entry[K comparable, V any] struct {
	stamp uint64
	key   K
	value V
}

func olderFirst[K comparable, V any](a, b entry[K, V]) bool {
	return a.stamp <= b.stamp
}

// New constructs an empty cache.
func New[K comparable, V any](cfg Config) (*Cache[K, V], error) {
	if cfg.Capacity <= 0 {
		return nil, errors.WithDetails(ErrInvalidCapacity, "capacity", cfg.Capacity)
	}

	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	return &Cache[K, V]{
		maxEntries: cfg.Capacity,
		entries:    heap.New(cfg.Capacity, olderFirst[K, V]),
		index:      make(map[K]heap.Handle, cfg.Capacity),
		log:        log,
	}, nil
}

// Find looks up key and marks it most recently used.
//
// The returned pointer refers to the stored value and stays valid until the
// entry is evicted, removed or replaced. A miss returns (nil, false).
func (c *Cache[K, V]) Find(key K) (*V, bool) {
	h, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++

	stamp := c.tick()
	c.must(c.entries.Update(h, func(e *entry[K, V]) { e.stamp = stamp }))

	return c.valueOf(h), true
}

// Insert stores value under key as the most recently used entry and returns
// a pointer to the stored value.
//
// If key is already present its value is replaced. Otherwise, when the cache
// is full, the least recently used entry is evicted and its slot reused.
func (c *Cache[K, V]) Insert(key K, value V) *V {
	e := entry[K, V]{stamp: c.tick(), key: key, value: value}

	if h, ok := c.index[key]; ok {
		c.must(c.entries.Update(h, func(old *entry[K, V]) { *old = e }))
		return c.valueOf(h)
	}

	var h heap.Handle

	if c.entries.Len() == c.maxEntries {
		var err error
		h, err = c.entries.MinimumHandle()
		c.must(err)

		victim, err := c.entries.Get(h)
		c.must(err)
		c.evicted(victim)

		// Overwriting in place keeps the handle; the new stamp is the largest
		// in the heap so the entry sinks to a leaf.
		c.must(c.entries.Update(h, func(old *entry[K, V]) { *old = e }))
	} else {
		var err error
		h, err = c.entries.Insert(e)
		c.must(err)
	}

	c.index[key] = h

	return c.valueOf(h)
}

// FindOrInsert returns the value for key, calling produce to create it on a
// miss. produce runs at most once, and only when key is absent.
func (c *Cache[K, V]) FindOrInsert(key K, produce func() V) *V {
	if v, ok := c.Find(key); ok {
		return v
	}

	return c.Insert(key, produce())
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	return c.entries.Len()
}

// Cap returns the fixed capacity.
func (c *Cache[K, V]) Cap() int {
	return c.maxEntries
}

func (c *Cache[K, V]) tick() uint64 {
	c.clock++
	return c.clock
}

func (c *Cache[K, V]) valueOf(h heap.Handle) *V {
	e, err := c.entries.Get(h)
	c.must(err)

	return &e.value
}

func (c *Cache[K, V]) evicted(victim *entry[K, V]) {
	delete(c.index, victim.key)
	c.stats.Evictions++

	if l := c.log.V(1); l.Enabled() {
		l.Info("evicted least recently used entry", "key", victim.key, "stamp", victim.stamp)
	}
}

// must panics on heap errors. The cache only hands the heap live handles and
// evicts before it grows past capacity, so any error is a broken invariant.
func (c *Cache[K, V]) must(err error) {
	if err != nil {
		panic(errors.WrapIf(err, "cache: internal invariant violated"))
	}
}
