// Package queue provides a FIFO queue for single-owner use.
package queue

// Queue is a slice backed FIFO queue. It is not safe for concurrent use;
// callers hold their own lock.
type Queue[T any] struct {
	items []T
	head  int
}

// New creates a Queue with room for prealloc items.
func New[T any](prealloc int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, prealloc)}
}

// Enqueue adds an item to the tail of the queue.
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue removes and returns the item at the head of the queue. ok is
// false when the queue is empty.
func (q *Queue[T]) Dequeue() (item T, ok bool) {
	if q.IsEmpty() {
		return item, false
	}

	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// reuse the backing array once drained
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}

	return item, true
}

// Peek returns the item at the head of the queue without removing it.
func (q *Queue[T]) Peek() (item T, ok bool) {
	if q.IsEmpty() {
		return item, false
	}

	return q.items[q.head], true
}

// Reset empties the queue.
func (q *Queue[T]) Reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}

// IsEmpty returns true if the queue is empty, false otherwise.
func (q *Queue[T]) IsEmpty() bool {
	return q.Length() == 0
}

// Length returns the number of items in the queue.
func (q *Queue[T]) Length() int {
	return len(q.items) - q.head
}
