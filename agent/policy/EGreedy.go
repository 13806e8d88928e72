// Package policy implements action selection policies for value-based
// agents
package policy

import (
	"fmt"
	"math"
	"math/rand"

	"sfneuman.com/gonav/agent"
	"sfneuman.com/gonav/utils/floatutils"
)

// Decay holds the immutable schedule parameters of an exponentially
// decaying exploration rate. The step counter the schedule is
// evaluated at is supplied by the caller on each invocation, so a
// Decay is a pure function of step count.
type Decay struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Decay float64 `json:"decay"`
}

// NewDecay returns a new exploration rate schedule decaying from start
// to stop at the given rate
func NewDecay(start, stop, decay float64) (Decay, error) {
	if start < stop {
		return Decay{}, fmt.Errorf("newdecay: start (%v) must be >= stop "+
			"(%v)", start, stop)
	}
	if stop < 0 {
		return Decay{}, fmt.Errorf("newdecay: stop must be >= 0 \n\thave"+
			"(%v)", stop)
	}
	if decay <= 0 {
		return Decay{}, fmt.Errorf("newdecay: decay must be > 0 \n\thave"+
			"(%v)", decay)
	}
	return Decay{Start: start, Stop: stop, Decay: decay}, nil
}

// Rate returns the exploration rate after step total steps:
//
//	stop + (start - stop) * exp(-decay * step)
//
// Rate is monotonically non-increasing in step and asymptotically
// approaches stop.
func (d Decay) Rate(step int) float64 {
	return d.Stop + (d.Start-d.Stop)*math.Exp(-d.Decay*float64(step))
}

// EGreedy selects discrete actions either uniformly randomly or
// greedily with respect to a ValueFunction, with the balance between
// the two governed by a Decay schedule over total steps taken.
type EGreedy struct {
	decay      Decay
	numActions int
	rng        *rand.Rand
}

// NewEGreedy returns a new EGreedy policy over numActions actions
func NewEGreedy(decay Decay, numActions int, seed int64) (*EGreedy, error) {
	if numActions < 1 {
		return nil, fmt.Errorf("newegreedy: numActions must be > 0 "+
			"\n\thave(%v)", numActions)
	}

	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &EGreedy{
		decay:      decay,
		numActions: numActions,
		rng:        rng,
	}, nil
}

// Schedule returns the policy's Decay schedule
func (e *EGreedy) Schedule() Decay {
	return e.decay
}

// SelectAction selects an action for the state given by the flattened
// stacked-frame state and normalized position, after step total steps.
// The action and the exploration rate used to select it are returned.
//
// A uniform variate u in [0, 1) is drawn and compared against the
// schedule's rate: when rate < u a uniformly random action is
// returned, otherwise the action with the highest estimated value is
// returned, ties broken by the first occurring action index.
func (e *EGreedy) SelectAction(step int, state, position []float64,
	q agent.ValueFunction) (int, float64, error) {
	u := e.rng.Float64()
	rate := e.decay.Rate(step)

	if rate < u {
		return e.rng.Intn(e.numActions), rate, nil
	}

	values, err := q.Predict(state, position)
	if err != nil {
		return 0, rate, fmt.Errorf("selectaction: could not predict "+
			"action values: %v", err)
	}
	if len(values) != e.numActions {
		return 0, rate, fmt.Errorf("selectaction: invalid number of action "+
			"values \n\twant(%v)\n\thave(%v)", e.numActions, len(values))
	}

	return floatutils.ArgMax(values), rate, nil
}
