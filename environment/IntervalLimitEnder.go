package environment

import (
	"gonum.org/v1/gonum/spatial/r1"
	"sfneuman.com/gonav/timestep"
)

// IntervalLimit implements the Ender interface to end episodes
// whenever a single feature of a position vector leaves some interval
type IntervalLimit struct {
	intervals []r1.Interval
	indices   []int
	endType   timestep.EndType
}

// NewIntervalLimit creates and returns a new interval limit. The
// endType argument determines what the episode end should be
// considered as.
func NewIntervalLimit(limits []r1.Interval, posIndices []int,
	endType timestep.EndType) Ender {
	if len(limits) != len(posIndices) {
		panic("limits should have same length as position indices")
	}

	return &IntervalLimit{limits, posIndices, endType}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last and its End field is the appropriate ending
// type.
func (i *IntervalLimit) End(t *timestep.TimeStep) bool {
	for index := range i.indices {

		featureIndex := i.indices[index]
		interval := i.intervals[index]

		if t.Position.AtVec(featureIndex) > interval.Max ||
			t.Position.AtVec(featureIndex) < interval.Min {
			t.StepType = timestep.Last
			t.SetEnd(i.endType)
			return true
		}
	}
	return false
}
