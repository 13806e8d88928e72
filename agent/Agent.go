// Package agent defines an agent interface
package agent

import (
	"sfneuman.com/gonav/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action int, nextStep timestep.TimeStep) error

	// Step performs a single learning update
	Step() error

	// UpdateReady returns whether enough experience has been recorded
	// for a learning update to be performed
	UpdateReady() bool

	// LastLoss returns the loss of the most recent learning update
	LastLoss() float64

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner should share the same value function weights so
// that any changes the Learner makes to the weights are reflected in
// the actions the Policy chooses.
type Policy interface {
	// SelectAction returns a discrete action for the current timestep
	SelectAction(t timestep.TimeStep) (int, error)
}

// ValueFunction is a trainable action-value estimator. Given a
// flattened stacked-frame state and a normalized position, it
// estimates the value of each discrete action.
//
// ValueFunction is an opaque collaborator of the Learner: its only
// contract is prediction, a gradient-based training step, and
// persistence of its parameters.
type ValueFunction interface {
	// Predict returns the estimated value of each action for a single
	// state
	Predict(state, position []float64) ([]float64, error)

	// PredictBatch returns the estimated value of each action for a
	// batch of BatchSize() states, in row major order
	PredictBatch(states, positions []float64) ([]float64, error)

	// TrainStep performs a single gradient-based update of the value
	// function toward the argument targets on the actions selected by
	// the one-hot actionMasks and returns the loss
	TrainStep(states, positions, targets, actionMasks []float64) (float64,
		error)

	// BatchSize returns the number of states in a training batch
	BatchSize() int

	// NumActions returns the number of actions whose values are
	// estimated
	NumActions() int

	// StateSize returns the number of features in a flattened
	// stacked-frame state
	StateSize() int

	// PositionSize returns the number of position features
	PositionSize() int

	// Save persists the value function's current parameters
	Save(path string) error
}
