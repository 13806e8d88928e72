package frame

import (
	"math"
	"testing"

	"gorgonia.org/tensor"
)

const tolerance float64 = 1e-12

// TestPreprocess checks that preprocessing converts a multi-channel
// frame to a normalized grayscale frame by averaging channels
func TestPreprocess(t *testing.T) {
	backing := []float64{
		// Row 0
		255, 255, 255,
		0, 0, 0,
		// Row 1
		30, 60, 90,
		255, 0, 0,
	}
	f := tensor.New(tensor.WithShape(2, 2, 3), tensor.WithBacking(backing))

	processed, err := Preprocess(f)
	if err != nil {
		t.Fatalf("could not preprocess frame: %v", err)
	}

	shape := processed.Shape()
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 2 {
		t.Fatalf("got shape %v, expected (2, 2)", shape)
	}

	expected := []float64{
		1.0,
		0.0,
		60.0 / 255.0,
		85.0 / 255.0,
	}
	data := processed.Data().([]float64)
	for i := range expected {
		if math.Abs(data[i]-expected[i]) > tolerance {
			t.Errorf("pixel %v: got %v, expected %v", i, data[i],
				expected[i])
		}
	}
}

// TestPreprocessInvalidShape checks that preprocessing rejects frames
// without a channel dimension
func TestPreprocessInvalidShape(t *testing.T) {
	f := tensor.New(
		tensor.WithShape(4, 4),
		tensor.WithBacking(make([]float64, 16)),
	)

	if _, err := Preprocess(f); !IsInvalidShape(err) {
		t.Errorf("got error %v, expected an invalid shape error", err)
	}

	if _, err := Preprocess(nil); !IsInvalidShape(err) {
		t.Errorf("got error %v for nil frame, expected an invalid "+
			"shape error", err)
	}
}
