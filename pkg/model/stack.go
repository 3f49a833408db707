package model

// Stack is a LIFO of values. Pushing and popping values is O(1).
// The zero value is an empty stack ready to use.
type Stack[T any] struct {
	values []T
}

func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{values: make([]T, 0, capacity)}
}

// Push adds a value to the top of the stack.
func (s *Stack[T]) Push(v T) {
	s.values = append(s.values, v)
}

// Pop removes and returns the top value from the stack.
func (s *Stack[T]) Pop() (result T, ok bool) {
	if len(s.values) == 0 {
		return result, false
	}
	top := s.values[len(s.values)-1]
	var zero T
	s.values[len(s.values)-1] = zero
	s.values = s.values[:len(s.values)-1]
	return top, true
}

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (result T, ok bool) {
	if len(s.values) == 0 {
		return result, false
	}
	return s.values[len(s.values)-1], true
}

func (s *Stack[T]) Len() int { return len(s.values) }
