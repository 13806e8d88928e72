package frame

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Stack maintains a fixed-length rolling window of the most recently
// preprocessed frames of an episode-in-progress and produces a single
// multi-frame temporal tensor from the window.
//
// A Stack is owned explicitly by the episode loop that created it.
// Reset must be called with the first frame of each episode before
// Push is called for the remaining frames of that episode.
type Stack struct {
	depth      int
	rows, cols int

	// window holds the preprocessed frames oldest first, each
	// flattened in row major order
	window [][]float64
}

// NewStack returns a new Stack holding a rolling window of depth
// preprocessed frames
func NewStack(depth int) *Stack {
	return &Stack{depth: depth}
}

// Depth returns the number of frames stacked together by the Stack
func (s *Stack) Depth() int {
	return s.depth
}

// Reset discards the current window and fills every slot of a new
// window with the preprocessed first frame of an episode, returning
// the stacked tensor.
//
// Every slot holds a copy of the real first observation rather than
// zeros so that the very first decision of an episode is made from a
// stack representing "nothing has moved yet" instead of injected
// zero-padding artifacts.
func (s *Stack) Reset(f *tensor.Dense) (*tensor.Dense, error) {
	processed, err := Preprocess(f)
	if err != nil {
		return nil, fmt.Errorf("reset: %v", err)
	}

	shape := processed.Shape()
	s.rows, s.cols = shape[0], shape[1]

	first := processed.Data().([]float64)
	s.window = make([][]float64, s.depth)
	for i := range s.window {
		s.window[i] = make([]float64, len(first))
		copy(s.window[i], first)
	}

	return s.stacked(), nil
}

// Push preprocesses a frame and slides it into the window, evicting
// the oldest frame, and returns the stacked tensor. The eviction order
// is the insertion order.
func (s *Stack) Push(f *tensor.Dense) (*tensor.Dense, error) {
	if s.window == nil {
		return nil, fmt.Errorf("push: stack not reset with an episode's " +
			"first frame")
	}

	processed, err := Preprocess(f)
	if err != nil {
		return nil, fmt.Errorf("push: %v", err)
	}

	shape := processed.Shape()
	if shape[0] != s.rows || shape[1] != s.cols {
		return nil, &ShapeError{Op: "push", Err: errFrameSizeChanged}
	}

	copy(s.window, s.window[1:])
	s.window[s.depth-1] = processed.Data().([]float64)

	return s.stacked(), nil
}

// stacked stacks the window along a new trailing axis, producing a
// tensor of shape (rows, cols, depth)
func (s *Stack) stacked() *tensor.Dense {
	pixels := s.rows * s.cols
	backing := make([]float64, pixels*s.depth)
	for k, frame := range s.window {
		for i := 0; i < pixels; i++ {
			backing[i*s.depth+k] = frame[i]
		}
	}

	return tensor.New(
		tensor.WithShape(s.rows, s.cols, s.depth),
		tensor.WithBacking(backing),
	)
}
