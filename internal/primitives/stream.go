package primitives

// Stream is an append-only sequence of milestone groups.
//
// A new group is opened by the first Append after the stream is created,
// reset, or marked with Milestone. Group order is creation order and entries
// keep insertion order; the stream never re-sorts.
type Stream[T any] struct {
	groups  [][]T
	openNew bool
}

// NewStream creates an empty stream whose first Append opens a group.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{openNew: true}
}

// Append adds v to the current group. It reports whether a new group was
// opened for it.
func (s *Stream[T]) Append(v T) bool {
	if s.openNew || len(s.groups) == 0 {
		s.openNew = false
		s.groups = append(s.groups, []T{v})
		return true
	}
	last := len(s.groups) - 1
	s.groups[last] = append(s.groups[last], v)
	return false
}

// Milestone makes the next Append open a new group. Repeated calls without
// an Append in between open only one group.
func (s *Stream[T]) Milestone() {
	s.openNew = true
}

// Pending reports whether the next Append opens a new group.
func (s *Stream[T]) Pending() bool {
	return s.openNew
}

// Reset drops every group and re-arms the first-group flag.
func (s *Stream[T]) Reset() {
	s.groups = nil
	s.openNew = true
}

// Groups returns a deep copy of the groups.
func (s *Stream[T]) Groups() [][]T {
	out := make([][]T, len(s.groups))
	for i, g := range s.groups {
		out[i] = append([]T(nil), g...)
	}
	return out
}

// Len returns the number of groups.
func (s *Stream[T]) Len() int {
	return len(s.groups)
}

// Entries returns the number of entries across all groups.
func (s *Stream[T]) Entries() int {
	n := 0
	for _, g := range s.groups {
		n += len(g)
	}
	return n
}
