package util

import "testing"

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	if !s.Empty() {
		t.Error("new stack should be empty")
	}
	s.Push(1)
	s.Push(2)
	s.Push(3)
	if s.Size() != 3 {
		t.Errorf("size = %d, want 3", s.Size())
	}
	if v := s.Pop(); v != 3 {
		t.Errorf("Pop = %v, want 3", v)
	}
	if v := s.Top(-1); v != 2 {
		t.Errorf("Top(-1) = %v, want 2", v)
	}
	if v := s.Top(-2); v != 1 {
		t.Errorf("Top(-2) = %v, want 1", v)
	}
	if v := s.Top(-3); v != nil {
		t.Errorf("Top(-3) = %v, want nil", v)
	}
	if v := s.Top(0); v != nil {
		t.Errorf("Top(0) = %v, want nil", v)
	}
}

func TestStackPopEmpty(t *testing.T) {
	s := NewStack()
	if v := s.Pop(); v != nil {
		t.Errorf("Pop on empty = %v, want nil", v)
	}
}

func TestStackSetTop(t *testing.T) {
	s := NewStack()
	s.Push("a")
	s.Push("b")
	if !s.SetTop(-1, "c") {
		t.Fatal("SetTop(-1) failed")
	}
	if v := s.Top(-1); v != "c" {
		t.Errorf("Top(-1) = %v, want c", v)
	}
	if s.SetTop(-3, "x") {
		t.Error("SetTop out of range should fail")
	}
}

func TestStackErase(t *testing.T) {
	s := NewStack()
	for i := 0; i < 5; i++ {
		s.Push(i)
	}
	if !s.Erase(1, 3) {
		t.Fatal("Erase(1, 3) failed")
	}
	if s.Size() != 3 {
		t.Fatalf("size = %d, want 3", s.Size())
	}
	want := []interface{}{0, 3, 4}
	for i, w := range want {
		if v := s.Top(i - 3); v != w {
			t.Errorf("element %d = %v, want %v", i, v, w)
		}
	}
	if s.Erase(2, 2) {
		t.Error("empty range should fail")
	}
	if s.Erase(1, 9) {
		t.Error("out of range end should fail")
	}
}

func TestStackInsertRemove(t *testing.T) {
	s := NewStack()
	s.Push(1)
	s.Push(3)
	if !s.Insert(1, 2) {
		t.Fatal("Insert failed")
	}
	if v := s.Top(-2); v != 2 {
		t.Errorf("Top(-2) = %v, want 2", v)
	}
	if !s.RemoveAt(1) {
		t.Fatal("RemoveAt failed")
	}
	if s.Size() != 2 {
		t.Errorf("size = %d, want 2", s.Size())
	}
}

func TestStackSwapAndCopy(t *testing.T) {
	s := NewStack()
	s.Push(1)
	s.Push(2)
	if !s.Swap(0, 1) {
		t.Fatal("Swap failed")
	}
	if v := s.Top(-1); v != 1 {
		t.Errorf("Top(-1) = %v, want 1", v)
	}

	dup := s.Copy()
	dup.Pop()
	if s.Size() != 2 {
		t.Error("Copy should not share backing storage")
	}

	other := NewStack()
	other.Push(9)
	Swap(s, other)
	if s.Size() != 1 || other.Size() != 2 {
		t.Errorf("Swap sizes = %d, %d, want 1, 2", s.Size(), other.Size())
	}
}

func TestStackCountBool(t *testing.T) {
	s := NewStack()
	s.Push(true)
	s.Push(false)
	s.Push(false)
	if n := s.CountBool(false); n != 2 {
		t.Errorf("CountBool(false) = %d, want 2", n)
	}
	if n := s.CountBool(true); n != 1 {
		t.Errorf("CountBool(true) = %d, want 1", n)
	}
}
