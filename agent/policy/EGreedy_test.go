package policy

import (
	"math"
	"testing"
)

// stubValueFunction predicts a fixed set of action values for every
// state
type stubValueFunction struct {
	values []float64
}

func (s *stubValueFunction) Predict(state, position []float64) ([]float64,
	error) {
	return s.values, nil
}

func (s *stubValueFunction) PredictBatch(states,
	positions []float64) ([]float64, error) {
	return s.values, nil
}

func (s *stubValueFunction) TrainStep(states, positions, targets,
	actionMasks []float64) (float64, error) {
	return 0, nil
}

func (s *stubValueFunction) BatchSize() int    { return 1 }
func (s *stubValueFunction) NumActions() int   { return len(s.values) }
func (s *stubValueFunction) StateSize() int    { return 1 }
func (s *stubValueFunction) PositionSize() int { return 1 }

func (s *stubValueFunction) Save(path string) error { return nil }

// TestDecayRate checks the exploration rate schedule at its endpoints
// and for monotonicity
func TestDecayRate(t *testing.T) {
	decay, err := NewDecay(0.9, 0.05, 0.0001)
	if err != nil {
		t.Fatalf("could not create schedule: %v", err)
	}

	if rate := decay.Rate(0); rate != 0.9 {
		t.Errorf("got rate %v at step 0, expected the starting rate 0.9",
			rate)
	}

	previous := decay.Rate(0)
	for _, step := range []int{1, 10, 100, 1_000, 10_000, 100_000} {
		rate := decay.Rate(step)
		if rate > previous {
			t.Errorf("rate increased from %v to %v at step %v", previous,
				rate, step)
		}
		if rate < 0.05 {
			t.Errorf("rate %v at step %v fell below the stopping rate",
				rate, step)
		}
		previous = rate
	}

	if rate := decay.Rate(100_000); math.Abs(rate-0.05) > 1e-3 {
		t.Errorf("got rate %v after 100000 steps, expected close to "+
			"the stopping rate 0.05", rate)
	}
}

// TestNewDecayValidates checks that invalid schedules are rejected
func TestNewDecayValidates(t *testing.T) {
	if _, err := NewDecay(0.1, 0.9, 0.01); err == nil {
		t.Error("expected an error when start < stop")
	}
	if _, err := NewDecay(0.9, -0.1, 0.01); err == nil {
		t.Error("expected an error when stop < 0")
	}
	if _, err := NewDecay(0.9, 0.1, 0.0); err == nil {
		t.Error("expected an error when decay is not positive")
	}
}

// TestEGreedyGreedyAction checks that with a saturated exploration
// rate the policy always selects the highest valued action, breaking
// ties by the first occurring index
func TestEGreedyGreedyAction(t *testing.T) {
	// With start = stop = 1, the rate is 1 and never below a uniform
	// variate, so every selection is greedy
	decay, err := NewDecay(1.0, 1.0, 0.01)
	if err != nil {
		t.Fatalf("could not create schedule: %v", err)
	}

	q := &stubValueFunction{values: []float64{0.1, 0.7, 0.7, 0.3}}
	eGreedy, err := NewEGreedy(decay, len(q.values), 14)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}

	for step := 0; step < 25; step++ {
		action, rate, err := eGreedy.SelectAction(step, []float64{0},
			[]float64{0}, q)
		if err != nil {
			t.Fatalf("could not select action: %v", err)
		}
		if rate != 1.0 {
			t.Fatalf("got rate %v, expected 1.0", rate)
		}
		if action != 1 {
			t.Errorf("step %v: got action %v, expected the first "+
				"highest valued action 1", step, action)
		}
	}
}

// TestEGreedyRandomAction checks that with a zero exploration rate the
// policy explores on almost every selection
func TestEGreedyRandomAction(t *testing.T) {
	// With start = stop = 0, the rate is 0 and below any positive
	// uniform variate, so selections are uniformly random
	decay, err := NewDecay(0.0, 0.0, 0.01)
	if err != nil {
		t.Fatalf("could not create schedule: %v", err)
	}

	numActions := 4
	q := &stubValueFunction{values: []float64{1.0, 0.0, 0.0, 0.0}}
	eGreedy, err := NewEGreedy(decay, numActions, 14)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}

	seen := make(map[int]bool)
	for step := 0; step < 1_000; step++ {
		action, _, err := eGreedy.SelectAction(step, []float64{0},
			[]float64{0}, q)
		if err != nil {
			t.Fatalf("could not select action: %v", err)
		}
		if action < 0 || action >= numActions {
			t.Fatalf("got action %v out of range [0, %v)", action,
				numActions)
		}
		seen[action] = true
	}

	// Uniformly random selection should reach every action
	for action := 0; action < numActions; action++ {
		if !seen[action] {
			t.Errorf("action %v was never selected", action)
		}
	}
}
