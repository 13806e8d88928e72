package navworld

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"sfneuman.com/gonav/environment"
	"sfneuman.com/gonav/timestep"
)

// Task is a Task in the navworld environment. Navworld Tasks need
// access to the environment itself to determine whether the agent has
// collided with an obstacle, so they are registered with the
// environment on construction.
type Task interface {
	environment.Task
	registerEnv(*navWorld)
}

// Reach implements the task of reaching a goal position while
// avoiding obstacles.
//
// The agent receives goalReward on timesteps where it is within
// goalRadius of the goal position, collisionPenalty on the timestep
// where it collides with an obstacle or a boundary wall, and
// stepPenalty on every other timestep. Positions are normalized to
// [0, 1] in each dimension.
//
// Collisions and leaving the world's bounds end episodes at terminal
// states. Reaching the goal does not: the agent is rewarded for every
// timestep it spends at the goal until the episode times out at its
// step limit.
type Reach struct {
	environment.Starter

	goal       mat.Vector
	goalRadius float64

	goalReward       float64
	stepPenalty      float64
	collisionPenalty float64

	maxSteps int
	enders   []environment.Ender
	env      *navWorld
}

// NewReach returns a new Reach task with goal position goal, given in
// normalized coordinates. Starting positions are sampled from s, and
// episodes time out after maxSteps steps.
func NewReach(s environment.Starter, goal mat.Vector, goalRadius float64,
	goalReward, stepPenalty, collisionPenalty float64,
	maxSteps int) *Reach {
	return &Reach{
		Starter:          s,
		goal:             goal,
		goalRadius:       goalRadius,
		goalReward:       goalReward,
		stepPenalty:      stepPenalty,
		collisionPenalty: collisionPenalty,
		maxSteps:         maxSteps,
	}
}

// registerEnv registers the environment in which the task is being
// completed and constructs the task's enders over that environment
func (r *Reach) registerEnv(n *navWorld) {
	r.env = n
	r.enders = []environment.Ender{
		environment.NewStepLimit(r.maxSteps),
		environment.NewIntervalLimit(
			[]r1.Interval{{Min: 0.0, Max: 1.0}, {Min: 0.0, Max: 1.0}},
			[]int{0, 1},
			timestep.TerminalStateReached,
		),
		environment.NewFunctionEnder(func(mat.Vector) bool {
			return n.collided
		}, timestep.TerminalStateReached),
	}
}

// End checks each of the task's enders against the argument timestep,
// ending the episode with the first that applies
func (r *Reach) End(t *timestep.TimeStep) bool {
	for _, ender := range r.enders {
		if ender.End(t) {
			return true
		}
	}
	return false
}

// GetReward returns the reward for reaching position, given whether
// the move collided with an obstacle
func (r *Reach) GetReward(position mat.Vector, collided bool) float64 {
	if collided {
		return r.collisionPenalty
	}
	if r.AtGoal(position) {
		return r.goalReward
	}
	return r.stepPenalty
}

// AtGoal returns whether position is within the goal radius of the
// task's goal position
func (r *Reach) AtGoal(position mat.Vector) bool {
	dx := position.AtVec(0) - r.goal.AtVec(0)
	dy := position.AtVec(1) - r.goal.AtVec(1)

	return math.Sqrt(dx*dx+dy*dy) <= r.goalRadius
}

// Goal returns the task's goal position in normalized coordinates
func (r *Reach) Goal() mat.Vector {
	return r.goal
}

// GoalRadius returns the radius around the goal position within which
// the goal is considered reached
func (r *Reach) GoalRadius() float64 {
	return r.goalRadius
}

// Min returns the minimum attainable reward
func (r *Reach) Min() float64 {
	return r.collisionPenalty
}

// Max returns the maximum attainable reward
func (r *Reach) Max() float64 {
	return r.goalReward
}

// RewardSpec returns the reward specification of the task
func (r *Reach) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{r.Min()})
	upperBound := mat.NewVecDense(1, []float64{r.Max()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}
