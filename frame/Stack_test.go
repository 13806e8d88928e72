package frame

import (
	"math"
	"testing"

	"gorgonia.org/tensor"
)

// uniformFrame returns a rows x cols RGB frame with every channel of
// every pixel set to value
func uniformFrame(rows, cols int, value float64) *tensor.Dense {
	backing := make([]float64, rows*cols*3)
	for i := range backing {
		backing[i] = value
	}
	return tensor.New(
		tensor.WithShape(rows, cols, 3),
		tensor.WithBacking(backing),
	)
}

// TestStackReset checks that resetting a stack fills every slot of the
// window with the episode's first frame
func TestStackReset(t *testing.T) {
	stack := NewStack(4)

	stacked, err := stack.Reset(uniformFrame(2, 3, 255))
	if err != nil {
		t.Fatalf("could not reset stack: %v", err)
	}

	shape := stacked.Shape()
	if len(shape) != 3 || shape[0] != 2 || shape[1] != 3 || shape[2] != 4 {
		t.Fatalf("got shape %v, expected (2, 3, 4)", shape)
	}

	for i, value := range stacked.Data().([]float64) {
		if math.Abs(value-1.0) > tolerance {
			t.Fatalf("element %v: got %v, expected every slot to hold "+
				"the first frame", i, value)
		}
	}
}

// TestStackPush checks that pushed frames slide through the window in
// insertion order, evicting the oldest frame
func TestStackPush(t *testing.T) {
	depth := 3
	stack := NewStack(depth)

	if _, err := stack.Reset(uniformFrame(2, 2, 0)); err != nil {
		t.Fatalf("could not reset stack: %v", err)
	}

	// Push enough frames to evict the first frame entirely
	values := []float64{51, 102, 153}
	var stacked *tensor.Dense
	var err error
	for _, value := range values {
		stacked, err = stack.Push(uniformFrame(2, 2, value))
		if err != nil {
			t.Fatalf("could not push frame: %v", err)
		}
	}

	// The window should hold the pushed frames oldest first
	data := stacked.Data().([]float64)
	for pixel := 0; pixel < 4; pixel++ {
		for k, value := range values {
			expected := value / 255.0
			got := data[pixel*depth+k]
			if math.Abs(got-expected) > tolerance {
				t.Errorf("pixel %v slot %v: got %v, expected %v", pixel,
					k, got, expected)
			}
		}
	}
}

// TestStackPushBeforeReset checks that a stack cannot be pushed to
// before it has been reset with an episode's first frame
func TestStackPushBeforeReset(t *testing.T) {
	stack := NewStack(2)
	if _, err := stack.Push(uniformFrame(2, 2, 0)); err == nil {
		t.Error("expected an error when pushing to a stack that was " +
			"never reset")
	}
}

// TestStackPushSizeChanged checks that a stack rejects frames whose
// size differs from the episode's first frame
func TestStackPushSizeChanged(t *testing.T) {
	stack := NewStack(2)
	if _, err := stack.Reset(uniformFrame(2, 2, 0)); err != nil {
		t.Fatalf("could not reset stack: %v", err)
	}

	if _, err := stack.Push(uniformFrame(3, 3, 0)); !IsInvalidShape(err) {
		t.Errorf("got error %v, expected an invalid shape error", err)
	}
}
