// Package heap implements an addressable binary min-heap.
//
// Elements live in a slots.Store and never move; the heap orders handles,
// not values. Each element records its current tree position, so any element
// can be found by handle and re-prioritized in O(log n) without a scan.
//
// Heap is not safe for concurrent use.
package heap

import (
	"cmp"

	"emperror.dev/errors"

	"heaplru/internal/slots"
)

const (
	// ErrEmpty is returned when the minimum of an empty heap is requested.
	ErrEmpty = errors.Sentinel("heap: empty")

	// ErrCorrupt is returned by Verify when an internal invariant is broken.
	ErrCorrupt = errors.Sentinel("heap: corrupt")

	// ErrCapacityExceeded is returned by Insert on a full heap.
	ErrCapacityExceeded = slots.ErrCapacityExceeded

	// ErrInvalidHandle is returned for handles whose element was removed.
	ErrInvalidHandle = slots.ErrInvalidHandle
)

// Handle addresses one element of a Heap.
type Handle struct {
	h slots.Handle
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.h.IsZero() }

type item[T any] struct {
	pos   int
	value T
}

// Heap is a fixed-capacity min-heap over T.
//
// The comparator reports whether a may be an ancestor of b (a <= b). Ties
// are not broken; the relative order of equal elements is unspecified.
type Heap[T any] struct {
	store     *slots.Store[item[T]]
	positions []slots.Handle
	less      func(a, b T) bool
}

// New returns an empty heap of the given capacity ordered by less.
func New[T any](capacity int, less func(a, b T) bool) *Heap[T] {
	if less == nil {
		panic("heap: nil comparator")
	}

	return &Heap[T]{
		store:     slots.New[item[T]](capacity),
		positions: make([]slots.Handle, 0, capacity),
		less:      less,
	}
}

// NewOrdered returns an empty heap of the given capacity ordered by <=.
func NewOrdered[T cmp.Ordered](capacity int) *Heap[T] {
	return New(capacity, func(a, b T) bool { return a <= b })
}

// Len returns the number of elements.
func (h *Heap[T]) Len() int { return len(h.positions) }

// Cap returns the fixed capacity.
func (h *Heap[T]) Cap() int { return cap(h.positions) }

// Insert adds v and returns its handle.
func (h *Heap[T]) Insert(v T) (Handle, error) {
	if len(h.positions) == cap(h.positions) {
		return Handle{}, errors.WithDetails(ErrCapacityExceeded, "capacity", cap(h.positions))
	}

	sh, err := h.store.Emplace(item[T]{pos: len(h.positions), value: v})
	if err != nil {
		return Handle{}, err
	}

	h.positions = append(h.positions, sh)
	h.siftUp(len(h.positions) - 1)

	return Handle{h: sh}, nil
}

// Minimum returns a pointer to the smallest element.
//
// Mutating the element through the pointer breaks heap order; use Update.
func (h *Heap[T]) Minimum() (*T, error) {
	if len(h.positions) == 0 {
		return nil, ErrEmpty
	}

	return &h.at(0).value, nil
}

// MinimumHandle returns the handle of the smallest element.
func (h *Heap[T]) MinimumHandle() (Handle, error) {
	if len(h.positions) == 0 {
		return Handle{}, ErrEmpty
	}

	return Handle{h: h.positions[0]}, nil
}

// RemoveMinimum removes the smallest element. Its handle becomes invalid.
func (h *Heap[T]) RemoveMinimum() error {
	if len(h.positions) == 0 {
		return ErrEmpty
	}

	h.removeAt(0)

	return nil
}

// Remove removes the element denoted by handle from anywhere in the heap.
func (h *Heap[T]) Remove(handle Handle) error {
	it, err := h.store.Get(handle.h)
	if err != nil {
		return err
	}

	h.removeAt(it.pos)

	return nil
}

// Get returns a pointer to the element denoted by handle.
//
// Mutating the element's priority through the pointer breaks heap order; use Update.
func (h *Heap[T]) Get(handle Handle) (*T, error) {
	it, err := h.store.Get(handle.h)
	if err != nil {
		return nil, err
	}

	return &it.value, nil
}

// Update applies mutate to the element denoted by handle and restores heap
// order. The handle stays valid; only the element's position may change.
func (h *Heap[T]) Update(handle Handle, mutate func(*T)) error {
	it, err := h.store.Get(handle.h)
	if err != nil {
		return err
	}

	mutate(&it.value)

	// Direction of the change is unknown: try down first, then up from
	// wherever the element landed. At most one of them moves it.
	h.siftUp(h.siftDown(it.pos))

	return nil
}

// Verify checks heap order and that every element's recorded position
// matches its place in the tree.
func (h *Heap[T]) Verify() error {
	if h.store.Len() != len(h.positions) {
		return errors.WithDetails(ErrCorrupt, "reason", "store and tree sizes differ",
			"store", h.store.Len(), "tree", len(h.positions))
	}

	for i, sh := range h.positions {
		it, err := h.store.Get(sh)
		if err != nil {
			return errors.WrapWithDetails(ErrCorrupt, "dangling handle in tree", "position", i, "cause", err.Error())
		}

		if it.pos != i {
			return errors.WithDetails(ErrCorrupt, "reason", "position mismatch", "position", i, "recorded", it.pos)
		}

		if i > 0 && !h.less(h.at(parent(i)).value, it.value) {
			return errors.WithDetails(ErrCorrupt, "reason", "heap order violated", "position", i)
		}
	}

	return nil
}

func parent(i int) int { return (i - 1) / 2 }

// at returns the item at tree position i. Positions only ever hold live
// handles, so a lookup failure means the heap itself is broken.
func (h *Heap[T]) at(i int) *item[T] {
	it, err := h.store.Get(h.positions[i])
	if err != nil {
		panic(errors.WrapWithDetails(err, "heap: tree references a dead element", "position", i))
	}

	return it
}

func (h *Heap[T]) ordered(i, j int) bool {
	return h.less(h.at(i).value, h.at(j).value)
}

func (h *Heap[T]) swap(i, j int) {
	h.at(i).pos, h.at(j).pos = j, i
	h.positions[i], h.positions[j] = h.positions[j], h.positions[i]
}

func (h *Heap[T]) removeAt(i int) {
	last := len(h.positions) - 1
	sh := h.positions[i]

	h.swap(i, last)
	h.positions = h.positions[:last]

	if err := h.store.Remove(sh); err != nil {
		panic(errors.WrapWithDetails(err, "heap: remove of a tree element failed", "position", i))
	}

	if i < last {
		h.siftUp(h.siftDown(i))
	}
}

// siftUp moves the element at i toward the root and returns its final position.
func (h *Heap[T]) siftUp(i int) int {
	for i > 0 {
		p := parent(i)
		if h.ordered(p, i) {
			break
		}

		h.swap(p, i)
		i = p
	}

	return i
}

// siftDown moves the element at i toward the leaves and returns its final position.
func (h *Heap[T]) siftDown(i int) int {
	n := len(h.positions)

	for {
		l := 2*i + 1
		if l >= n {
			return i
		}

		m := l
		if r := l + 1; r < n && !h.ordered(l, r) {
			m = r
		}

		if h.ordered(i, m) {
			return i
		}

		h.swap(i, m)
		i = m
	}
}
