// Package queue implements FIFO queue used for breadth-first traversals.
package queue

const minCap = 4

// Queue is a FIFO queue. Zero value is an empty queue ready to use.
type Queue[T any] struct {
	items []T
	head  int
}

// New creates queue containing items, first item is fetched first.
func New[T any](items ...T) *Queue[T] {
	q := &Queue[T]{items: make([]T, 0, max(len(items), minCap))}
	q.items = append(q.items, items...)
	return q
}

// IsEmpty reports whether queue has no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.head == len(q.items)
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// Append adds item to the tail.
func (q *Queue[T]) Append(item T) *Queue[T] {
	if q.head > 0 && q.head<<1 >= len(q.items) && len(q.items) == cap(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.items = append(q.items, item)
	return q
}

// First removes and returns the head item. Returns zero value and false if queue is empty.
func (q *Queue[T]) First() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item, true
}
