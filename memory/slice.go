package memory

// Slice is an allocator-binding-parameterized dynamic array: push/pop/
// reserve/clear over a POD-like payload, with no destructor calls. Of the
// two divergent dynamic-array contracts the source engine exposed
// (template-heavy and procedural), this follows the procedural one, since
// it is allocator-binding-driven and matches the core's explicit
// separation of containers from concrete allocators.
//
// Slice wraps a native Go slice for the actual storage (Go's append already
// gives amortised-growth semantics equivalent to grow-by-doubling). It keeps
// the Bindings it was created with but does not call them: no bytes are
// drawn from, returned to, or accounted against that allocator.
type Slice[T any] struct {
	bindings Bindings
	data     []T
}

// NewSlice creates an empty Slice backed by the given Bindings, with room
// for capacity elements pre-reserved.
func NewSlice[T any](b Bindings, capacity int) *Slice[T] {
	return &Slice[T]{bindings: b, data: make([]T, 0, capacity)}
}

// Len returns the number of elements currently stored.
func (s *Slice[T]) Len() int { return len(s.data) }

// Cap returns the current element capacity.
func (s *Slice[T]) Cap() int { return cap(s.data) }

// PushBack appends v, growing the backing array if needed.
func (s *Slice[T]) PushBack(v T) {
	s.data = append(s.data, v)
}

// PopBack removes and returns the last element. It panics if the array is
// empty, mirroring the source's debug-assert-on-misuse contract.
func (s *Slice[T]) PopBack() T {
	errkindAssert(len(s.data) > 0, "memory: PopBack on empty Slice")
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}

// At returns a pointer to the element at index i for in-place mutation.
func (s *Slice[T]) At(i int) *T {
	return &s.data[i]
}

// Reserve ensures the backing array can hold at least n elements without
// reallocating.
func (s *Slice[T]) Reserve(n int) {
	if cap(s.data) >= n {
		return
	}
	grown := make([]T, len(s.data), n)
	copy(grown, s.data)
	s.data = grown
}

// Clear empties the array without releasing its backing storage. There is
// no destructor invocation on the cleared elements, matching the source
// contract for POD-like payloads.
func (s *Slice[T]) Clear() {
	s.data = s.data[:0]
}

// Raw exposes the backing slice directly for callers (e.g. archetype chunk
// walking) that need direct indexing without per-call bounds-checked
// wrapper calls.
func (s *Slice[T]) Raw() []T { return s.data }
