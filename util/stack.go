package util

// Stack is a LIFO of views the user navigated through.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop returns the zero value on an empty stack.
func (s *Stack[T]) Pop() (item T) {
	if len(s.items) == 0 {
		return
	}
	item, s.items = s.items[len(s.items)-1], s.items[:len(s.items)-1]
	return
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}
