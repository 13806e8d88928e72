package navworld

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gonav/timestep"
)

// fixedStarter always starts episodes at the same normalized position
type fixedStarter struct {
	x, y float64
}

func (f fixedStarter) Start() *mat.VecDense {
	return mat.NewVecDense(2, []float64{f.x, f.y})
}

func newTestWorld(t *testing.T, maxSteps int) (*Reach, timestep.TimeStep,
	func(int) (timestep.TimeStep, bool, error)) {
	t.Helper()

	task := NewReach(fixedStarter{0.1, 0.3},
		mat.NewVecDense(2, []float64{0.85, 0.85}), 0.08, 1.0, -0.01, -1.0,
		maxSteps)

	env, first, err := New(task, 0.99)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return task, first, env.Step
}

// TestResetFirstTimestep checks the shape and contents of an episode's
// first timestep
func TestResetFirstTimestep(t *testing.T) {
	_, first, _ := newTestWorld(t, 50)

	if !first.First() {
		t.Errorf("got step type %v after a reset, expected First",
			first.StepType)
	}
	if first.Number != 0 {
		t.Errorf("got step number %v after a reset, expected 0",
			first.Number)
	}

	shape := first.Frame.Shape()
	if len(shape) != 3 || shape[0] != int(ViewportH) ||
		shape[1] != int(ViewportW) || shape[2] != FrameChannels {
		t.Errorf("got frame shape %v, expected (%v, %v, %v)", shape,
			int(ViewportH), int(ViewportW), FrameChannels)
	}

	for i := 0; i < first.Position.Len(); i++ {
		p := first.Position.AtVec(i)
		if p < 0 || p > 1 {
			t.Errorf("position feature %v is %v, expected a normalized "+
				"value in [0, 1]", i, p)
		}
	}
}

// TestStepMid checks a single collision-free environment step
func TestStepMid(t *testing.T) {
	_, _, step := newTestWorld(t, 50)

	next, last, err := step(MoveRight)
	if err != nil {
		t.Fatalf("could not step environment: %v", err)
	}
	if last {
		t.Fatal("collision-free step away from the walls ended the episode")
	}
	if !next.Mid() {
		t.Errorf("got step type %v, expected Mid", next.StepType)
	}
	if next.Number != 1 {
		t.Errorf("got step number %v, expected 1", next.Number)
	}
	if next.Reward != -0.01 {
		t.Errorf("got reward %v away from the goal, expected the step "+
			"penalty -0.01", next.Reward)
	}
	if next.Frame == nil {
		t.Error("timestep has no rendered frame")
	}
}

// TestStepInvalidAction checks that out of range actions are rejected
func TestStepInvalidAction(t *testing.T) {
	_, _, step := newTestWorld(t, 50)

	if _, _, err := step(MaxDiscreteAction + 1); err == nil {
		t.Error("expected an error stepping with an out of range action")
	}
	if _, _, err := step(MinDiscreteAction - 1); err == nil {
		t.Error("expected an error stepping with a negative action")
	}
}

// TestStepLimitTimeout checks that episodes time out at the task's
// step limit without being recorded as terminations
func TestStepLimitTimeout(t *testing.T) {
	_, _, step := newTestWorld(t, 3)

	// Alternate opposing moves so the agent stays in open space
	actions := []int{MoveRight, MoveLeft, MoveRight}
	var last timestep.TimeStep
	for i, action := range actions {
		next, done, err := step(action)
		if err != nil {
			t.Fatalf("could not step environment: %v", err)
		}
		if i < len(actions)-1 && done {
			t.Fatalf("episode ended after %v steps, before the step "+
				"limit", i+1)
		}
		last = next
	}

	if !last.Last() {
		t.Fatal("episode did not end at the step limit")
	}
	if !last.TimeoutEnd() {
		t.Errorf("episode at the step limit ended with %v, expected a "+
			"timeout", last.End)
	}
	if last.TerminalEnd() {
		t.Error("episode at the step limit was recorded as a termination")
	}
}

// TestReachRewards checks the task's reward scheme
func TestReachRewards(t *testing.T) {
	task, _, _ := newTestWorld(t, 50)

	atGoal := mat.NewVecDense(2, []float64{0.85, 0.85})
	nearGoal := mat.NewVecDense(2, []float64{0.85, 0.80})
	farFromGoal := mat.NewVecDense(2, []float64{0.1, 0.3})

	if r := task.GetReward(atGoal, false); r != 1.0 {
		t.Errorf("got reward %v at the goal, expected 1.0", r)
	}
	if r := task.GetReward(nearGoal, false); r != 1.0 {
		t.Errorf("got reward %v within the goal radius, expected 1.0", r)
	}
	if r := task.GetReward(farFromGoal, false); r != -0.01 {
		t.Errorf("got reward %v away from the goal, expected the step "+
			"penalty -0.01", r)
	}

	// Collisions dominate the goal reward
	if r := task.GetReward(atGoal, true); r != -1.0 {
		t.Errorf("got reward %v for a collision, expected the collision "+
			"penalty -1.0", r)
	}

	if task.AtGoal(farFromGoal) {
		t.Error("position far from the goal reported as at the goal")
	}
	if !task.AtGoal(nearGoal) {
		t.Error("position within the goal radius not reported as at the " +
			"goal")
	}
}
