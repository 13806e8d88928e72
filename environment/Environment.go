// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gonav/timestep"
)

// Starter implements a distribution of starting positions and samples
// starting positions for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when and how episodes end. The End method checks
// whether its argument is the last timestep in an episode. If so, the
// method modifies the timestep so that its StepType field is
// timestep.Last and its End field records the ending type, and
// returns true.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme and termination conditions for
// navigating in some environment. Rewards are a function of the
// position reached by a move and of whether the move caused a
// collision with an obstacle.
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for reaching position, given
	// whether the move collided with an obstacle
	GetReward(position mat.Vector, collided bool) float64

	// AtGoal returns whether position is a goal position
	AtGoal(position mat.Vector) bool

	// Min returns the minimum attainable reward
	Min() float64

	// Max returns the maximum attainable reward
	Max() float64

	RewardSpec() Spec
}

// Environment implements a simulated world for an agent to navigate,
// which includes a Task to complete.
//
// Observations are pairs of a rendered frame, held in the Frame field
// of returned timesteps, and the agent's normalized position, held in
// the Position field.
type Environment interface {
	Task

	// Reset resets the environment between episodes, returning the
	// first timestep of the new episode
	Reset() (timestep.TimeStep, error)

	// Step takes one environmental step given a discrete action,
	// returning the next timestep and whether it is the last in the
	// episode
	Step(action int) (timestep.TimeStep, bool, error)

	DiscountSpec() Spec
	ObservationSpec() Spec
	PositionSpec() Spec
	ActionSpec() Spec
}
