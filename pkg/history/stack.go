// Package history provides the bounded, lossy stacks that hold undo and redo entries.
package history

// DefaultCapacity is used when a stack is created with a non-positive capacity.
const DefaultCapacity = 50

// Stack is a bounded LIFO of history entries.
// Pushing onto a full stack silently evicts the oldest entry.
type Stack[T any] struct {
	entries  []T // oldest first
	capacity int
}

// NewStack creates a new stack with the specified capacity
func NewStack[T any](capacity int) *Stack[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Stack[T]{
		entries:  make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push adds an entry on top of the stack.
// When the stack is full the oldest entry is dropped and returned with evicted=true.
func (s *Stack[T]) Push(entry T) (dropped T, evicted bool) {
	if len(s.entries) >= s.capacity {
		// Shift everything left and reuse the last slot
		dropped = s.entries[0]
		copy(s.entries, s.entries[1:])
		s.entries[len(s.entries)-1] = entry
		return dropped, true
	}

	s.entries = append(s.entries, entry)
	return dropped, false
}

// Pop removes and returns the top entry
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.entries) == 0 {
		return zero, false
	}

	top := s.entries[len(s.entries)-1]
	s.entries[len(s.entries)-1] = zero
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// Peek returns the top entry without removing it
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.entries) == 0 {
		var zero T
		return zero, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of retained entries
func (s *Stack[T]) Len() int {
	return len(s.entries)
}

// Cap returns the maximum number of entries
func (s *Stack[T]) Cap() int {
	return s.capacity
}

// Empty reports whether the stack holds no entries
func (s *Stack[T]) Empty() bool {
	return len(s.entries) == 0
}

// Clear drops every entry
func (s *Stack[T]) Clear() {
	s.entries = make([]T, 0, s.capacity)
}

// Items returns a copy of the entries from top (most recent) to bottom (oldest).
func (s *Stack[T]) Items() []T {
	items := make([]T, len(s.entries))
	for i, e := range s.entries {
		items[len(s.entries)-1-i] = e
	}
	return items
}

// Resize changes the capacity, evicting the oldest entries if needed.
// It returns the number of evicted entries.
func (s *Stack[T]) Resize(capacity int) int {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	evicted := 0
	if len(s.entries) > capacity {
		evicted = len(s.entries) - capacity
		s.entries = append(make([]T, 0, capacity), s.entries[evicted:]...)
	} else {
		grown := make([]T, len(s.entries), capacity)
		copy(grown, s.entries)
		s.entries = grown
	}
	s.capacity = capacity
	return evicted
}
