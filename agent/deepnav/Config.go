package deepnav

import (
	"fmt"

	"sfneuman.com/gonav/agent/policy"
	"sfneuman.com/gonav/expreplay"
	"sfneuman.com/gonav/initwfn"
	"sfneuman.com/gonav/network"
	"sfneuman.com/gonav/solver"
)

// Config implements a configuration for a DeepNav agent
type Config struct {
	// PolicyLayers, Biases, and Activations describe the hidden layers
	// of the value network. For index i, PolicyLayers[i] is the number
	// of nodes in hidden layer i; Biases[i] is whether hidden layer i
	// has a bias unit; and Activations[i] is the activation function
	// of hidden layer i.
	PolicyLayers []int
	Biases       []bool
	Activations  []*network.Activation

	// InitWFn is the weight initialization scheme of the value network
	// and Solver determines how its weights are updated from gradients
	InitWFn *initwfn.InitWFn
	Solver  *solver.Solver

	// Epsilon is the schedule by which the exploration rate decays
	// over total steps taken
	Epsilon policy.Decay

	// Gamma discounts the value of future states when computing
	// learning targets
	Gamma float64

	// FrameDepth is the number of consecutive preprocessed frames
	// stacked together to form a state
	FrameDepth int

	// HuberDelta is the threshold at which the training loss switches
	// from quadratic to linear
	HuberDelta float64

	ExpReplay expreplay.Config
}

// BatchSize returns the number of transitions the agent trains on at
// a time
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// Validate checks whether the Config is valid
func (c Config) Validate() error {
	if len(c.PolicyLayers) != len(c.Biases) {
		return fmt.Errorf("invalid number of biases \n\twant(%v)"+
			"\n\thave(%v)", len(c.PolicyLayers), len(c.Biases))
	}
	if len(c.PolicyLayers) != len(c.Activations) {
		return fmt.Errorf("invalid number of activations \n\twant(%v)"+
			"\n\thave(%v)", len(c.PolicyLayers), len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("no weight initializer given")
	}
	if c.Solver == nil {
		return fmt.Errorf("no solver given")
	}
	if c.Gamma < 0 || c.Gamma >= 1.0 {
		return fmt.Errorf("gamma must be in [0, 1) \n\thave(%v)", c.Gamma)
	}
	if c.FrameDepth < 1 {
		return fmt.Errorf("frame depth must be > 0 \n\thave(%v)",
			c.FrameDepth)
	}
	if c.HuberDelta <= 0 {
		return fmt.Errorf("huber delta must be > 0 \n\thave(%v)",
			c.HuberDelta)
	}
	if c.BatchSize() < 1 {
		return fmt.Errorf("batch size must be > 0 \n\thave(%v)",
			c.BatchSize())
	}
	return nil
}
