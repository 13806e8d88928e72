package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// TestUniformStarter checks that sampled starting positions stay
// within their bounds
func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: 0.1, Max: 0.3}, {Min: 0.5, Max: 0.9}}
	starter := NewUniformStarter(bounds, 14)

	for i := 0; i < 100; i++ {
		start := starter.Start()
		if start.Len() != len(bounds) {
			t.Fatalf("got a starting position of %v features, expected %v",
				start.Len(), len(bounds))
		}
		for j, interval := range bounds {
			p := start.AtVec(j)
			if p < interval.Min || p > interval.Max {
				t.Errorf("starting position feature %v is %v, outside "+
					"[%v, %v]", j, p, interval.Min, interval.Max)
			}
		}
	}
}

// TestPointsStarter checks that sampled starting positions come from
// the candidate set and that every candidate is eventually used
func TestPointsStarter(t *testing.T) {
	points := []*mat.VecDense{
		mat.NewVecDense(2, []float64{0.1, 0.1}),
		mat.NewVecDense(2, []float64{0.1, 0.9}),
		mat.NewVecDense(2, []float64{0.9, 0.1}),
	}
	starter, err := NewPointsStarter(points, 14)
	if err != nil {
		t.Fatalf("could not create starter: %v", err)
	}

	used := make([]bool, len(points))
	for i := 0; i < 200; i++ {
		start := starter.Start()

		found := false
		for j, point := range points {
			if mat.Equal(start, point) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("starting position %v is not a candidate position",
				mat.Formatted(start))
		}
	}
	for j, u := range used {
		if !u {
			t.Errorf("candidate position %v was never sampled", j)
		}
	}
}

// TestNewPointsStarterValidates checks that invalid candidate sets are
// rejected
func TestNewPointsStarterValidates(t *testing.T) {
	if _, err := NewPointsStarter(nil, 14); err == nil {
		t.Error("expected an error with no candidate positions")
	}

	points := []*mat.VecDense{
		mat.NewVecDense(2, []float64{0.1, 0.1}),
		mat.NewVecDense(3, []float64{0.1, 0.9, 0.5}),
	}
	if _, err := NewPointsStarter(points, 14); err == nil {
		t.Error("expected an error with unequal candidate lengths")
	}
}
