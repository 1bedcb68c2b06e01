package engine

import (
	"errors"

	"github.com/ivlev/mdl2anim/internal/matrix"
)

// ErrStackUnderflow is returned when pop would leave the stack empty.
var ErrStackUnderflow = errors.New("transform stack underflow")

// Stack is the transform stack of one frame. It is never empty.
type Stack struct {
	m []matrix.Matrix
}

// NewStack returns a stack holding a single identity matrix.
func NewStack() *Stack {
	s := &Stack{m: make([]matrix.Matrix, 0, 8)}
	s.Reset()
	return s
}

// Reset drops everything but a single identity matrix.
func (s *Stack) Reset() {
	s.m = append(s.m[:0], matrix.Identity())
}

func (s *Stack) Len() int { return len(s.m) }

// Top returns the current coordinate system.
func (s *Stack) Top() matrix.Matrix {
	return s.m[len(s.m)-1]
}

// Replace overwrites the top of the stack.
func (s *Stack) Replace(m matrix.Matrix) {
	s.m[len(s.m)-1] = m
}

// Compose replaces the top with top*m, so m applies in the current
// coordinate system.
func (s *Stack) Compose(m matrix.Matrix) {
	s.Replace(s.Top().Multiply(m))
}

// Push duplicates the top.
func (s *Stack) Push() {
	s.m = append(s.m, s.Top())
}

func (s *Stack) Pop() error {
	if len(s.m) <= 1 {
		return ErrStackUnderflow
	}
	s.m = s.m[:len(s.m)-1]
	return nil
}
