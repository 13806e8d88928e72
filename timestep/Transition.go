package timestep

import "gonum.org/v1/gonum/mat"

// Transition packages together a single transition of experience: the
// stacked-frame state and normalized position at time t, the discrete
// action taken, the reward received, and the state and position which
// followed the action at time t+1.
//
// State and NextState are stacked frame tensors flattened in row major
// order. Stacked observations should always be flattened before being
// stored in a Transition so that downstream batching can copy them
// directly into batch tensors.
//
// On episode termination, NextState and NextPosition are well-formed,
// zero-filled values of the correct size. They are never nil, so
// consumers never need to special-case the shape of terminal
// transitions. The Terminal flag records the termination itself.
type Transition struct {
	State        []float64
	Position     mat.Vector
	Action       int
	Reward       float64
	NextState    []float64
	NextPosition mat.Vector
	Terminal     bool
}

// NewTransition constructs a new Transition
func NewTransition(state []float64, position mat.Vector, action int,
	reward float64, nextState []float64, nextPosition mat.Vector,
	terminal bool) Transition {
	return Transition{
		State:        state,
		Position:     position,
		Action:       action,
		Reward:       reward,
		NextState:    nextState,
		NextPosition: nextPosition,
		Terminal:     terminal,
	}
}
