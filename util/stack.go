package util

// Stack is the evaluation stack used by the script machine. Indexing in
// Top and SetTop is from the top: -1 is the topmost element, -2 the one
// below it.
type Stack struct {
	array []interface{}
}

func NewStack() *Stack {
	return &Stack{array: make([]interface{}, 0)}
}

func (s *Stack) Size() int {
	return len(s.array)
}

func (s *Stack) Empty() bool {
	return len(s.array) == 0
}

func (s *Stack) Push(value interface{}) {
	s.array = append(s.array, value)
}

func (s *Stack) Pop() interface{} {
	stackLen := len(s.array)
	if stackLen == 0 {
		return nil
	}
	e := s.array[stackLen-1]
	s.array = s.array[:stackLen-1]
	return e
}

func (s *Stack) Top(i int) interface{} {
	stackLen := len(s.array)
	if stackLen+i < 0 || stackLen+i >= stackLen {
		return nil
	}
	return s.array[stackLen+i]
}

func (s *Stack) SetTop(i int, value interface{}) bool {
	stackLen := len(s.array)
	if stackLen+i < 0 || stackLen+i >= stackLen {
		return false
	}
	s.array[stackLen+i] = value
	return true
}

func (s *Stack) Swap(i int, j int) bool {
	if i < 0 || i >= s.Size() || j < 0 || j >= s.Size() {
		return false
	}
	s.array[i], s.array[j] = s.array[j], s.array[i]
	return true
}

func (s *Stack) RemoveAt(index int) bool {
	if index < 0 || index >= s.Size() {
		return false
	}
	s.array = append(s.array[:index], s.array[index+1:]...)
	return true
}

// Erase removes the half open range [begin, end).
func (s *Stack) Erase(begin int, end int) bool {
	size := s.Size()
	if begin < 0 || begin >= end || end > size {
		return false
	}
	s.array = append(s.array[:begin], s.array[end:]...)
	return true
}

func (s *Stack) Insert(index int, value interface{}) bool {
	if index < 0 || index > s.Size() {
		return false
	}
	s.array = append(s.array, nil)
	copy(s.array[index+1:], s.array[index:])
	s.array[index] = value
	return true
}

// CountBool counts elements equal to val; the stack must hold bools.
func (s *Stack) CountBool(val bool) int {
	count := 0
	for _, e := range s.array {
		if e.(bool) == val {
			count++
		}
	}
	return count
}

func (s *Stack) Copy() *Stack {
	bak := make([]interface{}, s.Size())
	copy(bak, s.array)
	return &Stack{array: bak}
}

// Swap exchanges the contents of the two stacks.
func Swap(s *Stack, other *Stack) {
	s.array, other.array = other.array, s.array
}
