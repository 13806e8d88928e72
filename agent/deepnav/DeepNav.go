package deepnav

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gonav/agent"
	"sfneuman.com/gonav/agent/policy"
	"sfneuman.com/gonav/environment"
	"sfneuman.com/gonav/expreplay"
	"sfneuman.com/gonav/frame"
	"sfneuman.com/gonav/network"
	"sfneuman.com/gonav/timestep"
	"sfneuman.com/gonav/utils/floatutils"
)

// TerminalTarget is the learning target of terminal transitions.
// Episodes terminate on collisions, so the value of a transition into
// a terminal state is a fixed penalty, independent of the reward
// stored on the transition.
const TerminalTarget float64 = -1.0

// DeepNav implements a deep Q-learning agent for navigation
// environments.
//
// States consist of a rolling window of preprocessed frames, stacked
// and flattened, paired with the agent's normalized position. The
// agent stores its experience in a replay buffer and selects actions
// epsilon greedily with respect to a trainable action value function,
// with the exploration rate decaying exponentially over total steps
// taken.
type DeepNav struct {
	valueFn agent.ValueFunction
	replay  expreplay.ExperienceReplayer
	eGreedy *policy.EGreedy
	stack   *frame.Stack

	gamma      float64
	stepsTaken int

	// Flattened stacked-frame state and position of the most recently
	// observed timestep
	state    []float64
	position []float64

	lastLoss float64
	lastRate float64

	stateSize    int
	positionSize int
	numActions   int
}

// New creates and returns a new DeepNav agent acting in env
func New(env environment.Environment, c Config, seed int64) (*DeepNav,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: invalid configuration: %v", err)
	}

	obsSpec := env.ObservationSpec()
	rows := int(obsSpec.Shape.AtVec(0))
	cols := int(obsSpec.Shape.AtVec(1))
	stateSize := rows * cols * c.FrameDepth
	positionSize := env.PositionSpec().Shape.Len()
	numActions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1

	replay, err := c.ExpReplay.Create(stateSize, positionSize, numActions,
		seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create replay buffer: %v",
			err)
	}

	valueFn, err := network.NewQNet(stateSize, positionSize, numActions,
		c.BatchSize(), c.PolicyLayers, c.Biases, c.Activations,
		c.InitWFn.InitWFn(), c.Solver, c.HuberDelta)
	if err != nil {
		return nil, fmt.Errorf("new: could not create value function: %v",
			err)
	}

	eGreedy, err := policy.NewEGreedy(c.Epsilon, numActions, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy: %v", err)
	}

	return &DeepNav{
		valueFn:      valueFn,
		replay:       replay,
		eGreedy:      eGreedy,
		stack:        frame.NewStack(c.FrameDepth),
		gamma:        c.Gamma,
		lastRate:     c.Epsilon.Rate(0),
		stateSize:    stateSize,
		positionSize: positionSize,
		numActions:   numActions,
	}, nil
}

// ObserveFirst records the first timestep of an episode, filling the
// frame stack with the episode's first frame
func (d *DeepNav) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observefirst: timestep is not first of "+
			"episode \n\ttype(%v)", t.StepType)
	}

	stacked, err := d.stack.Reset(t.Frame)
	if err != nil {
		return fmt.Errorf("observefirst: could not stack frame: %v", err)
	}

	d.state = stacked.Data().([]float64)
	d.position = vectorSlice(t.Position)
	return nil
}

// SelectAction selects an action for the most recently observed
// timestep, either uniformly randomly or greedily with respect to the
// value function, and counts the selection toward the exploration
// rate's decay.
func (d *DeepNav) SelectAction(t timestep.TimeStep) (int, error) {
	if d.state == nil {
		return 0, fmt.Errorf("selectaction: no first timestep observed")
	}

	action, rate, err := d.eGreedy.SelectAction(d.stepsTaken, d.state,
		d.position, d.valueFn)
	if err != nil {
		return 0, fmt.Errorf("selectaction: %v", err)
	}
	d.stepsTaken++
	d.lastRate = rate

	return action, nil
}

// Observe records that the argument action led to the argument
// timestep, sliding the new frame into the frame stack and adding the
// completed transition to the replay buffer.
//
// When the new timestep terminates the episode, the transition is
// stored with zero-filled next state and next position of the correct
// sizes, and its Terminal flag set. Episodes ending at a step limit
// are not terminations, so their transitions are stored as ordinary
// transitions.
func (d *DeepNav) Observe(action int, next timestep.TimeStep) error {
	if next.First() {
		return fmt.Errorf("observe: cannot observe first timestep of " +
			"episode, use ObserveFirst")
	}
	if d.state == nil {
		return fmt.Errorf("observe: no first timestep observed")
	}

	stacked, err := d.stack.Push(next.Frame)
	if err != nil {
		return fmt.Errorf("observe: could not stack frame: %v", err)
	}

	nextState := stacked.Data().([]float64)
	nextPosition := vectorSlice(next.Position)

	transState := nextState
	transPosition := nextPosition
	if next.TerminalEnd() {
		transState = make([]float64, d.stateSize)
		transPosition = make([]float64, d.positionSize)
	}

	transition := timestep.NewTransition(
		d.state,
		mat.NewVecDense(d.positionSize, d.position),
		action,
		next.Reward,
		transState,
		mat.NewVecDense(d.positionSize, transPosition),
		next.TerminalEnd(),
	)
	if err := d.replay.Add(transition); err != nil {
		return fmt.Errorf("observe: could not add transition: %v", err)
	}

	d.state = nextState
	d.position = nextPosition
	return nil
}

// Step performs a single learning update: a batch of transitions is
// sampled from the replay buffer, learning targets are computed for
// the actions taken on those transitions, and a single gradient step
// is taken toward the targets.
//
// The target of a terminal transition is the fixed TerminalTarget.
// The target of every other transition is the transition's reward
// plus the discounted value of the best action in the next state.
//
// If the replay buffer cannot yet fill a batch, Step is a no-op.
func (d *DeepNav) Step() error {
	if !d.UpdateReady() {
		return nil
	}

	states, positions, actions, rewards, terminals, nextStates,
		nextPositions, err := d.replay.Sample()
	if err != nil {
		if expreplay.IsInsufficientSamples(err) ||
			expreplay.IsEmptyBuffer(err) {
			return nil
		}
		return fmt.Errorf("step: could not sample replay buffer: %v", err)
	}

	batch := d.valueFn.BatchSize()
	if len(states) != batch*d.stateSize ||
		len(nextStates) != batch*d.stateSize {
		return &BatchShapeError{
			Op: "step",
			Err: fmt.Errorf("sampled states do not form a %v x %v batch"+
				"\n\thave(%v, %v)", batch, d.stateSize, len(states),
				len(nextStates)),
		}
	}
	if len(positions) != batch*d.positionSize ||
		len(nextPositions) != batch*d.positionSize {
		return &BatchShapeError{
			Op: "step",
			Err: fmt.Errorf("sampled positions do not form a %v x %v "+
				"batch \n\thave(%v, %v)", batch, d.positionSize,
				len(positions), len(nextPositions)),
		}
	}
	if len(actions) != batch*d.numActions || len(rewards) != batch ||
		len(terminals) != batch {
		return &BatchShapeError{
			Op: "step",
			Err: fmt.Errorf("sampled actions, rewards, or terminals do "+
				"not form a batch of %v \n\thave(%v, %v, %v)", batch,
				len(actions), len(rewards), len(terminals)),
		}
	}

	nextValues, err := d.valueFn.PredictBatch(nextStates, nextPositions)
	if err != nil {
		return fmt.Errorf("step: could not predict next state values: %v",
			err)
	}

	targets := make([]float64, batch)
	for i := range targets {
		if terminals[i] != 0 {
			targets[i] = TerminalTarget
			continue
		}
		row := nextValues[i*d.numActions : (i+1)*d.numActions]
		targets[i] = rewards[i] + d.gamma*floatutils.Max(row...)
	}

	loss, err := d.valueFn.TrainStep(states, positions, targets, actions)
	if err != nil {
		return fmt.Errorf("step: could not train value function: %v", err)
	}
	d.lastLoss = loss

	return nil
}

// UpdateReady returns whether the replay buffer holds enough
// transitions for a learning update to be performed
func (d *DeepNav) UpdateReady() bool {
	return d.replay.SampleAvailable(d.replay.BatchSize())
}

// LastLoss returns the loss of the most recent learning update
func (d *DeepNav) LastLoss() float64 {
	return d.lastLoss
}

// ExplorationRate returns the exploration rate used for the most
// recent action selection
func (d *DeepNav) ExplorationRate() float64 {
	return d.lastRate
}

// TotalSteps returns the total number of actions the agent has
// selected
func (d *DeepNav) TotalSteps() int {
	return d.stepsTaken
}

// EndEpisode performs cleanup at the end of an episode. The frame
// stack is refilled by the next call to ObserveFirst, so nothing
// needs to be done.
func (d *DeepNav) EndEpisode() {}

// Save persists the agent's value function to the file at path
func (d *DeepNav) Save(path string) error {
	return d.valueFn.Save(path)
}

// vectorSlice copies a position vector into a flat []float64
func vectorSlice(v mat.Vector) []float64 {
	s := make([]float64, v.Len())
	for i := range s {
		s[i] = v.AtVec(i)
	}
	return s
}
