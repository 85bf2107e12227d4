// Package cache implements a single-process, fixed-capacity LRU cache.
//
// Goals for this package:
//   - Make the core data structures explicit (addressable min-heap + key index)
//   - O(1) miss, O(log n) hit / insert / eviction
//   - Stable storage: a value never moves while it is cached, so callers may
//     hold the returned pointer until the entry is evicted or replaced
//   - A precise eviction order driven by a logical clock, never wall time
//
// The cache performs no locking. Errors from the underlying heap cannot occur
// through this API and are reported by panicking.
package cache
