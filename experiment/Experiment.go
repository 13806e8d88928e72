// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"sfneuman.com/gonav/agent/deepnav"
	"sfneuman.com/gonav/environment/envconfig"
	"sfneuman.com/gonav/experiment/checkpointer"
	"sfneuman.com/gonav/experiment/trackers"
	ts "sfneuman.com/gonav/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments track environment TimeSteps, caching each TimeStep in
// RAM to be later saved to disk. The Save() function will then take
// all cached data and save it to disk. This is usually performed
// after an experiment has been run. The Run() method runs all
// episodes until the episode limit is reached. The RunEpisode()
// function runs a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to Trackers using the Tracker's Track() method.
// The Tracker then determines which data from the TimeStep it caches
// and saves. New Trackers can be registered with an Experiment through
// the constructor or through an Experiment's Register() function.
type Experiment interface {
	Run() error

	// RunEpisode runs a single episode, returning whether the
	// experiment has finished
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save()

	// Register adds a new trackers.Tracker to the (possibly already
	// running) experiment. Useful if you want to track data only
	// after a specified event.
	Register(t trackers.Tracker)

	// Tracks the current timestep by sending it to Trackers
	track(ts.TimeStep)

	// Saves the current state of the agent
	checkpoint(episode int) error
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxEpisodes   int
	PretrainSteps int
	UpdateEvery   int
	EnvConf       envconfig.Config
	AgentConf     deepnav.Config
}

// CreateExp creates the Experiment described by the Config
func (c Config) CreateExp(seed int64, t []trackers.Tracker,
	check []checkpointer.Checkpointer) (Experiment, error) {
	env, _, err := c.EnvConf.Create(uint64(seed))
	if err != nil {
		return nil, fmt.Errorf("createexp: could not create "+
			"environment: %v", err)
	}
	agent, err := deepnav.New(env, c.AgentConf, seed)
	if err != nil {
		return nil, fmt.Errorf("createexp: could not create agent: %v",
			err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, agent, c.MaxEpisodes, c.PretrainSteps,
			c.UpdateEvery, seed, t, check)
	}

	return nil, fmt.Errorf("createexp: no such experiment type %v", c.Type)
}
