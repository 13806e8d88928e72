package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PointsStarter returns starting positions sampled uniformly from a
// fixed set of candidate positions, given in normalized coordinates.
type PointsStarter struct {
	points []*mat.VecDense
	seed   uint64
	rand   distuv.Categorical
}

// NewPointsStarter returns a new PointsStarter sampling uniformly from
// points
func NewPointsStarter(points []*mat.VecDense,
	seed uint64) (PointsStarter, error) {
	if len(points) == 0 {
		return PointsStarter{}, fmt.Errorf("newpointsstarter: at least " +
			"one candidate position is required")
	}
	for i, point := range points {
		if point.Len() != points[0].Len() {
			return PointsStarter{}, fmt.Errorf("newpointsstarter: "+
				"candidate positions must have equal lengths "+
				"\n\twant(%v)\n\thave(%v at %v)", points[0].Len(),
				point.Len(), i)
		}
	}

	source := rand.NewSource(seed)
	weights := make([]float64, len(points))
	for i := range weights {
		weights[i] = 1.0 / float64(len(weights))
	}

	return PointsStarter{
		points: points,
		seed:   seed,
		rand:   distuv.NewCategorical(weights, source),
	}, nil
}

// Start returns a starting position vector
func (p PointsStarter) Start() *mat.VecDense {
	point := p.points[int(p.rand.Rand())]

	start := mat.NewVecDense(point.Len(), nil)
	start.CopyVec(point)
	return start
}
