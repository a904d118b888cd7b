package internal

// Stack is a bounded LIFO. Pushing onto a full stack drops the oldest
// entry.
type Stack[T any] struct {
	Data  []T
	Limit int // Maximum depth; 0 is unbounded.
}

// NewStack creates a stack holding at most limit entries.
func NewStack[T any](limit int) *Stack[T] {
	return &Stack[T]{Limit: limit}
}

func (s *Stack[T]) Push(value T) {
	if s.Full() {
		copy(s.Data, s.Data[1:])
		s.Data = s.Data[:len(s.Data)-1]
	}
	s.Data = append(s.Data, value)
}

func (s *Stack[T]) Pop() (value T, ok bool) {
	value, ok = s.Peek()
	if ok {
		var zero T
		s.Data[len(s.Data)-1] = zero
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack[T]) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack[T]) Full() bool {
	return s.Limit > 0 && len(s.Data) >= s.Limit
}

func (s *Stack[T]) Len() int {
	return len(s.Data)
}

func (s *Stack[T]) Peek() (value T, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack[T]) Reset() {
	clear(s.Data)
	s.Data = s.Data[:0]
}
