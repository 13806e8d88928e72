package experiment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gonav/environment"
	"sfneuman.com/gonav/experiment/checkpointer"
	"sfneuman.com/gonav/experiment/trackers"
	"sfneuman.com/gonav/timestep"
)

// stubEnv is an Environment whose episodes last a fixed number of
// steps, ending in a terminal state
type stubEnv struct {
	episodeLength int
	stepNumber    int
}

func (s *stubEnv) Reset() (timestep.TimeStep, error) {
	s.stepNumber = 0
	step := timestep.New(timestep.First, 0, 0.99, nil,
		mat.NewVecDense(2, []float64{0.1, 0.3}), 0)
	return step, nil
}

func (s *stubEnv) Step(action int) (timestep.TimeStep, bool, error) {
	s.stepNumber++
	stepType := timestep.Mid
	if s.stepNumber >= s.episodeLength {
		stepType = timestep.Last
	}

	step := timestep.New(stepType, -0.01, 0.99, nil,
		mat.NewVecDense(2, []float64{0.1, 0.3}), s.stepNumber)
	if step.Last() {
		step.SetEnd(timestep.TerminalStateReached)
	}
	return step, step.Last(), nil
}

func (s *stubEnv) Start() *mat.VecDense {
	return mat.NewVecDense(2, []float64{0.1, 0.3})
}

func (s *stubEnv) End(t *timestep.TimeStep) bool { return t.Last() }

func (s *stubEnv) GetReward(position mat.Vector, collided bool) float64 {
	return -0.01
}

func (s *stubEnv) AtGoal(position mat.Vector) bool { return false }

func (s *stubEnv) Min() float64 { return -1 }
func (s *stubEnv) Max() float64 { return 1 }

func (s *stubEnv) RewardSpec() environment.Spec {
	bounds := mat.NewVecDense(1, []float64{0})
	return environment.NewSpec(mat.NewVecDense(1, []float64{1}),
		environment.Reward, bounds, bounds, environment.Continuous)
}

func (s *stubEnv) DiscountSpec() environment.Spec {
	bounds := mat.NewVecDense(1, []float64{0.99})
	return environment.NewSpec(mat.NewVecDense(1, []float64{1}),
		environment.Discount, bounds, bounds, environment.Continuous)
}

func (s *stubEnv) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(3, []float64{64, 64, 3})
	low := mat.NewVecDense(3, []float64{0, 0, 0})
	high := mat.NewVecDense(3, []float64{255, 255, 255})
	return environment.NewSpec(shape, environment.Observation, low, high,
		environment.Continuous)
}

func (s *stubEnv) PositionSpec() environment.Spec {
	shape := mat.NewVecDense(2, []float64{1, 1})
	low := mat.NewVecDense(2, []float64{0, 0})
	high := mat.NewVecDense(2, []float64{1, 1})
	return environment.NewSpec(shape, environment.Position, low, high,
		environment.Continuous)
}

func (s *stubEnv) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, []float64{1})
	low := mat.NewVecDense(1, []float64{0})
	high := mat.NewVecDense(1, []float64{3})
	return environment.NewSpec(shape, environment.Action, low, high,
		environment.Discrete)
}

// stubAgent counts the calls made to it by the experiment loop
type stubAgent struct {
	observeFirstCalls int
	observeCalls      int
	selectActionCalls int
	stepCalls         int
	endEpisodeCalls   int
}

func (s *stubAgent) ObserveFirst(t timestep.TimeStep) error {
	s.observeFirstCalls++
	return nil
}

func (s *stubAgent) Observe(action int, next timestep.TimeStep) error {
	s.observeCalls++
	return nil
}

func (s *stubAgent) Step() error {
	s.stepCalls++
	return nil
}

func (s *stubAgent) UpdateReady() bool { return true }

func (s *stubAgent) LastLoss() float64 { return 0 }

func (s *stubAgent) EndEpisode() { s.endEpisodeCalls++ }

func (s *stubAgent) SelectAction(t timestep.TimeStep) (int, error) {
	s.selectActionCalls++
	return 0, nil
}

// stubCheckpointer records the episode numbers it is asked to
// checkpoint at
type stubCheckpointer struct {
	episodes []int
}

func (s *stubCheckpointer) Checkpoint(episode int) error {
	s.episodes = append(s.episodes, episode)
	return nil
}

// TestOnlinePretrain checks that for the first pretrainSteps
// environment steps, the agent neither selects actions nor learns,
// while still observing every timestep
func TestOnlinePretrain(t *testing.T) {
	env := &stubEnv{episodeLength: 5}
	agent := &stubAgent{}

	// Pretraining lasts longer than the whole experiment
	online, err := NewOnline(env, agent, 2, 100, 1, 14,
		[]trackers.Tracker{}, []checkpointer.Checkpointer{})
	if err != nil {
		t.Fatalf("could not create experiment: %v", err)
	}
	if err := online.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	if agent.selectActionCalls != 0 {
		t.Errorf("got %v action selections during pretraining, expected 0",
			agent.selectActionCalls)
	}
	if agent.stepCalls != 0 {
		t.Errorf("got %v learning updates during pretraining, expected 0",
			agent.stepCalls)
	}
	if agent.observeFirstCalls != 2 {
		t.Errorf("got %v first observations, expected one per episode",
			agent.observeFirstCalls)
	}
	if agent.observeCalls != 10 {
		t.Errorf("got %v observations, expected one per environment step "+
			"(10)", agent.observeCalls)
	}
	if agent.endEpisodeCalls != 2 {
		t.Errorf("got %v episode ends, expected 2", agent.endEpisodeCalls)
	}
}

// TestOnlineUpdateCadence checks that with no pretraining the agent
// selects every action and learns every updateEvery steps, counted
// across episode boundaries
func TestOnlineUpdateCadence(t *testing.T) {
	env := &stubEnv{episodeLength: 5}
	agent := &stubAgent{}

	online, err := NewOnline(env, agent, 2, 0, 3, 14,
		[]trackers.Tracker{}, []checkpointer.Checkpointer{})
	if err != nil {
		t.Fatalf("could not create experiment: %v", err)
	}
	if err := online.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	if agent.selectActionCalls != 10 {
		t.Errorf("got %v action selections, expected one per environment "+
			"step (10)", agent.selectActionCalls)
	}

	// 10 total steps with an update every 3 steps: updates at steps 3,
	// 6, and 9
	if agent.stepCalls != 3 {
		t.Errorf("got %v learning updates, expected 3", agent.stepCalls)
	}
}

// TestOnlineCheckpointing checks that checkpointers run once per
// completed episode with the completed episode's number
func TestOnlineCheckpointing(t *testing.T) {
	env := &stubEnv{episodeLength: 2}
	agent := &stubAgent{}
	check := &stubCheckpointer{}

	online, err := NewOnline(env, agent, 3, 0, 1, 14,
		[]trackers.Tracker{}, []checkpointer.Checkpointer{check})
	if err != nil {
		t.Fatalf("could not create experiment: %v", err)
	}
	if err := online.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	expected := []int{1, 2, 3}
	if len(check.episodes) != len(expected) {
		t.Fatalf("got %v checkpoints, expected %v", len(check.episodes),
			len(expected))
	}
	for i := range expected {
		if check.episodes[i] != expected[i] {
			t.Errorf("checkpoint %v: got episode %v, expected %v", i,
				check.episodes[i], expected[i])
		}
	}
}

// TestNewOnlineValidates checks that invalid experiment parameters are
// rejected
func TestNewOnlineValidates(t *testing.T) {
	env := &stubEnv{episodeLength: 2}
	agent := &stubAgent{}

	if _, err := NewOnline(env, agent, 0, 0, 1, 14, nil, nil); err == nil {
		t.Error("expected an error when maxEpisodes < 1")
	}
	if _, err := NewOnline(env, agent, 1, -1, 1, 14, nil, nil); err == nil {
		t.Error("expected an error when pretrainSteps < 0")
	}
	if _, err := NewOnline(env, agent, 1, 0, 0, 14, nil, nil); err == nil {
		t.Error("expected an error when updateEvery < 1")
	}
}
