package cache

import (
	"cmp"
	"slices"

	"emperror.dev/errors"
)

// ErrInconsistent is returned by Verify when the key index and the heap disagree.
const ErrInconsistent = errors.Sentinel("cache: index and heap disagree")

// Stats counts lookups and evictions since the cache was created.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns a snapshot of the counters.
func (c *Cache[K, V]) Stats() Stats {
	return c.stats
}

// Peek returns the value for key without changing its recency.
func (c *Cache[K, V]) Peek(key K) (*V, bool) {
	h, ok := c.index[key]
	if !ok {
		return nil, false
	}

	return c.valueOf(h), true
}

// Contains reports whether key is present without changing its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Remove deletes key if present and reports whether it was.
func (c *Cache[K, V]) Remove(key K) bool {
	h, ok := c.index[key]
	if !ok {
		return false
	}

	delete(c.index, key)
	c.must(c.entries.Remove(h))

	return true
}

// Keys returns keys in LRU -> MRU order.
//
// This is a debug helper; it is O(n log n).
func (c *Cache[K, V]) Keys() []K {
	type stamped struct {
		stamp uint64
		key   K
	}

	all := make([]stamped, 0, len(c.index))
	for _, h := range c.index {
		e, err := c.entries.Get(h)
		c.must(err)
		all = append(all, stamped{stamp: e.stamp, key: e.key})
	}

	slices.SortFunc(all, func(a, b stamped) int { return cmp.Compare(a.stamp, b.stamp) })

	out := make([]K, len(all))
	for i, s := range all {
		out[i] = s.key
	}

	return out
}

// Verify checks the heap invariants and that every indexed key maps to the
// heap entry carrying that key.
func (c *Cache[K, V]) Verify() error {
	if err := c.entries.Verify(); err != nil {
		return err
	}

	if len(c.index) != c.entries.Len() {
		return errors.WithDetails(ErrInconsistent, "index", len(c.index), "heap", c.entries.Len())
	}

	if c.entries.Len() > c.maxEntries {
		return errors.WithDetails(ErrInconsistent, "reason", "over capacity", "len", c.entries.Len())
	}

	for k, h := range c.index {
		e, err := c.entries.Get(h)
		if err != nil {
			return errors.WrapWithDetails(ErrInconsistent, "dangling handle", "key", k, "cause", err.Error())
		}

		if e.key != k {
			return errors.WithDetails(ErrInconsistent, "reason", "handle maps to another key", "key", k, "stored", e.key)
		}

		if e.stamp > c.clock {
			return errors.WithDetails(ErrInconsistent, "reason", "stamp ahead of clock", "key", k)
		}
	}

	return nil
}
