// Package slots implements a fixed-capacity slot arena with stable handles.
//
// Values live in a slice that never grows past the capacity given to New, so
// a value never moves once placed. Removed slots are threaded onto a free
// list and reused by the next Emplace. A handle stays valid, and keeps
// referring to the same value, until that value is removed.
package slots

import (
	"emperror.dev/errors"
)

const (
	// ErrCapacityExceeded is returned by Emplace when no free slot is left.
	ErrCapacityExceeded = errors.Sentinel("slots: capacity exceeded")

	// ErrInvalidHandle is returned when a handle does not denote a live value:
	// it is out of range, its slot is free, or the slot was reused since the
	// handle was issued.
	ErrInvalidHandle = errors.Sentinel("slots: invalid handle")
)

// noFree marks the end of the free list.
const noFree = -1

// Handle is an opaque reference to a value in a Store.
//
// The zero Handle is never issued.
type Handle struct {
	index int32
	gen   uint32
}

// Index reports the slot index the handle points at.
// It is meant for diagnostics; do not derive behavior from it.
func (h Handle) Index() int { return int(h.index) }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

type slot[T any] struct {
	value    T
	next     int32 // free-list link, valid only while !occupied
	gen      uint32
	occupied bool
}

// Store is a fixed-capacity arena of T.
//
// Store is not safe for concurrent use.
type Store[T any] struct {
	slots []slot[T]
	free  int32
	live  int
}

// New returns an empty Store able to hold capacity values.
func New[T any](capacity int) *Store[T] {
	return &Store[T]{
		slots: make([]slot[T], 0, capacity),
		free:  noFree,
	}
}

// Emplace stores v and returns its handle.
func (s *Store[T]) Emplace(v T) (Handle, error) {
	var idx int32

	switch {
	case s.free != noFree:
		idx = s.free
		s.free = s.slots[idx].next
	case len(s.slots) < cap(s.slots):
		idx = int32(len(s.slots))
		s.slots = append(s.slots, slot[T]{})
	default:
		return Handle{}, errors.WithDetails(ErrCapacityExceeded, "capacity", cap(s.slots))
	}

	sl := &s.slots[idx]
	sl.value = v
	sl.next = noFree
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1 // wrapped; zero is reserved for the zero Handle
	}
	sl.occupied = true
	s.live++

	return Handle{index: idx, gen: sl.gen}, nil
}

// Get returns a pointer to the value denoted by h.
//
// The pointer stays valid until the value is removed. Writing through it
// mutates the stored value in place.
func (s *Store[T]) Get(h Handle) (*T, error) {
	sl, err := s.lookup(h)
	if err != nil {
		return nil, err
	}

	return &sl.value, nil
}

// Remove destroys the value denoted by h and frees its slot for reuse.
// No other handle is affected.
func (s *Store[T]) Remove(h Handle) error {
	sl, err := s.lookup(h)
	if err != nil {
		return err
	}

	var zero T
	sl.value = zero
	sl.occupied = false
	sl.next = s.free
	s.free = h.index
	s.live--

	return nil
}

// Len returns the number of live values.
func (s *Store[T]) Len() int { return s.live }

// Cap returns the fixed capacity.
func (s *Store[T]) Cap() int { return cap(s.slots) }

func (s *Store[T]) lookup(h Handle) (*slot[T], error) {
	if h.index < 0 || int(h.index) >= len(s.slots) {
		return nil, errors.WithDetails(ErrInvalidHandle, "index", h.index, "reason", "out of range")
	}

	sl := &s.slots[h.index]
	if !sl.occupied {
		return nil, errors.WithDetails(ErrInvalidHandle, "index", h.index, "reason", "slot is free")
	}

	if sl.gen != h.gen {
		return nil, errors.WithDetails(ErrInvalidHandle, "index", h.index, "reason", "stale generation")
	}

	return sl, nil
}
