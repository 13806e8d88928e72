// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	env "sfneuman.com/gonav/environment"
	"sfneuman.com/gonav/environment/navworld"
	ts "sfneuman.com/gonav/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	NavWorld EnvName = "NavWorld"
)

// TaskName stores the tasks that can be configured with this package
type TaskName string

// Tasks available for configuration
const (
	Reach TaskName = "Reach"
)

// Config implements a specific configuration of a specific environment
// and specific task.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff int
	Discount      float64

	// Reach task parameters, with positions given in normalized
	// coordinates
	Goal             [2]float64
	GoalRadius       float64
	GoalReward       float64
	StepPenalty      float64
	CollisionPenalty float64

	// Bounds from which starting positions are drawn uniformly
	StartLower [2]float64
	StartUpper [2]float64

	// Discrete candidate starting positions. When non-empty, starting
	// positions are sampled uniformly from StartPoints instead of from
	// the StartLower and StartUpper bounds.
	StartPoints [][2]float64
}

// DefaultReach returns the configuration of the standard Reach task:
// the agent starts near the bottom left corner of the arena and must
// reach a goal region near the top right corner.
func DefaultReach(episodeCutoff int, discount float64) Config {
	return Config{
		Environment:      NavWorld,
		Task:             Reach,
		EpisodeCutoff:    episodeCutoff,
		Discount:         discount,
		Goal:             [2]float64{0.85, 0.85},
		GoalRadius:       0.08,
		GoalReward:       1.0,
		StepPenalty:      -0.01,
		CollisionPenalty: -1.0,
		StartLower:       [2]float64{0.1, 0.1},
		StartUpper:       [2]float64{0.3, 0.3},
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	switch c.Environment {
	case NavWorld:
		return c.createNavWorld(seed)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: no such environment "+
		"%v", c.Environment)
}

// createNavWorld creates and returns the navworld environment
// described by the Config
func (c Config) createNavWorld(seed uint64) (env.Environment, ts.TimeStep,
	error) {
	switch c.Task {
	case Reach:
		var starter env.Starter
		if len(c.StartPoints) > 0 {
			points := make([]*mat.VecDense, len(c.StartPoints))
			for i, p := range c.StartPoints {
				points[i] = mat.NewVecDense(2, []float64{p[0], p[1]})
			}

			var err error
			starter, err = env.NewPointsStarter(points, seed)
			if err != nil {
				return nil, ts.TimeStep{}, fmt.Errorf("create: could not "+
					"create starter: %v", err)
			}
		} else {
			starter = env.NewUniformStarter([]r1.Interval{
				{Min: c.StartLower[0], Max: c.StartUpper[0]},
				{Min: c.StartLower[1], Max: c.StartUpper[1]},
			}, seed)
		}

		goal := mat.NewVecDense(2, []float64{c.Goal[0], c.Goal[1]})
		task := navworld.NewReach(starter, goal, c.GoalRadius,
			c.GoalReward, c.StepPenalty, c.CollisionPenalty,
			c.EpisodeCutoff)

		return navworld.New(task, c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: no such task %v for "+
		"environment %v", c.Task, c.Environment)
}
