// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

// EndType describes the way in which an episode ended. Episodes may
// end because a terminal state was reached or because the episode
// timed out at a step limit. Steps in an episode-in-progress have an
// EndType of Nil.
type EndType int

const (
	TerminalStateReached EndType = iota
	Timeout
	Nil
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. The
// Frame field holds the raw multi-channel image observation of shape
// (rows, cols, channels), and the Position field holds the agent's
// normalized (x, y) coordinates.
type TimeStep struct {
	StepType StepType
	Reward   float64
	Discount float64
	Frame    *tensor.Dense
	Position mat.Vector
	Number   int
	End      EndType
}

// New constructs a new TimeStep
func New(t StepType, r, d float64, frame *tensor.Dense, position mat.Vector,
	n int) TimeStep {
	return TimeStep{t, r, d, frame, position, n, Nil}
}

// SetEnd records the way in which the episode containing the TimeStep
// ended
func (t *TimeStep) SetEnd(e EndType) {
	t.End = e
}

// TerminalEnd returns whether the TimeStep ends its episode by
// reaching a terminal state
func (t *TimeStep) TerminalEnd() bool {
	return t.Last() && t.End == TerminalStateReached
}

// TimeoutEnd returns whether the TimeStep ends its episode by
// reaching a step limit
func (t *TimeStep) TimeoutEnd() bool {
	return t.Last() && t.End == Timeout
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
