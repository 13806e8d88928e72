package experiment

import (
	"fmt"
	"math/rand"
	"time"

	"sfneuman.com/gonav/agent"
	env "sfneuman.com/gonav/environment"
	"sfneuman.com/gonav/experiment/checkpointer"
	"sfneuman.com/gonav/experiment/trackers"
	ts "sfneuman.com/gonav/timestep"
	"sfneuman.com/gonav/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
//
// The experiment runs a fixed number of episodes. For the first
// pretrainSteps environment steps, actions are selected uniformly
// randomly and no learning is performed, so that the agent's replay
// buffer is filled with experience before learning begins. Thereafter
// the agent selects every action, and a learning update is performed
// every updateEvery environment steps, counted across episode
// boundaries.
type Online struct {
	environment env.Environment
	agent       agent.Agent

	maxEpisodes   int
	pretrainSteps int
	updateEvery   int

	currentEpisode int
	totalSteps     int

	numActions int
	rng        *rand.Rand

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The maxEpisodes parameter
// determines how many episodes the experiment is run for, and the t
// parameter is a slice of trackers.Tracker which determine what data
// is saved.
func NewOnline(e env.Environment, a agent.Agent, maxEpisodes,
	pretrainSteps, updateEvery int, seed int64, t []trackers.Tracker,
	c []checkpointer.Checkpointer) (*Online, error) {
	if maxEpisodes < 1 {
		return nil, fmt.Errorf("newonline: maxEpisodes must be > 0 "+
			"\n\thave(%v)", maxEpisodes)
	}
	if pretrainSteps < 0 {
		return nil, fmt.Errorf("newonline: pretrainSteps must be >= 0 "+
			"\n\thave(%v)", pretrainSteps)
	}
	if updateEvery < 1 {
		return nil, fmt.Errorf("newonline: updateEvery must be > 0 "+
			"\n\thave(%v)", updateEvery)
	}

	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	source := rand.NewSource(seed)

	return &Online{
		environment:   e,
		agent:         a,
		maxEpisodes:   maxEpisodes,
		pretrainSteps: pretrainSteps,
		updateEvery:   updateEvery,
		numActions:    numActions,
		rng:           rand.New(source),
		trackers:      t,
		checkpointers: c,
		progress:      progressbar.New(50, maxEpisodes, time.Second, true),
	}, nil
}

// Register registers a trackers.Tracker with an Experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, returning
// whether the experiment has finished
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.environment.Reset()
	if err != nil {
		return true, fmt.Errorf("runepisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runepisode: could not observe first "+
			"timestep: %v", err)
	}
	o.track(step)

	for !step.Last() {
		o.totalSteps++

		// Select an action. Before learning begins, actions are
		// selected uniformly randomly to fill the replay buffer, and
		// those selections do not count toward the exploration rate's
		// decay.
		var action int
		if o.totalSteps <= o.pretrainSteps {
			action = o.rng.Intn(o.numActions)
		} else {
			action, err = o.agent.SelectAction(step)
			if err != nil {
				return true, fmt.Errorf("runepisode: could not select "+
					"action: %v", err)
			}
		}

		// Step in the environment
		step, _, err = o.environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runepisode: could not step "+
				"environment: %v", err)
		}

		// Cache the environment step in each Tracker
		o.track(step)

		// Observe the timestep and update the agent on schedule
		if err := o.agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runepisode: could not observe "+
				"timestep: %v", err)
		}
		if o.totalSteps > o.pretrainSteps &&
			o.totalSteps%o.updateEvery == 0 {
			if err := o.agent.Step(); err != nil {
				return true, fmt.Errorf("runepisode: could not step "+
					"agent: %v", err)
			}
		}
	}

	o.agent.EndEpisode()
	o.currentEpisode++
	if err := o.checkpoint(o.currentEpisode); err != nil {
		return true, fmt.Errorf("runepisode: could not checkpoint "+
			"agent: %v", err)
	}
	o.progress.Increment()

	return o.currentEpisode >= o.maxEpisodes, nil
}

// Run runs the entire experiment for all episodes
func (o *Online) Run() error {
	o.progress.Display()
	defer o.progress.Close()

	for ended := false; !ended; {
		var err error
		ended, err = o.RunEpisode()
		if err != nil {
			return err
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, tracker := range o.trackers {
		tracker.Save()
	}
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// checkpoint saves the current state of the agent with each
// Checkpointer
func (o *Online) checkpoint(episode int) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(episode); err != nil {
			return err
		}
	}
	return nil
}
