package main

import (
	"fmt"
	"log"

	"sfneuman.com/gonav/agent/deepnav"
	"sfneuman.com/gonav/agent/policy"
	"sfneuman.com/gonav/environment/envconfig"
	"sfneuman.com/gonav/experiment"
	"sfneuman.com/gonav/experiment/checkpointer"
	"sfneuman.com/gonav/experiment/trackers"
	"sfneuman.com/gonav/expreplay"
	"sfneuman.com/gonav/initwfn"
	"sfneuman.com/gonav/network"
	"sfneuman.com/gonav/solver"
)

func main() {
	var seed int64 = 192382

	// Create the environment
	envConf := envconfig.DefaultReach(500, 0.99)
	env, _, err := envConf.Create(uint64(seed))
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}

	// Weight initializer and solver for the value network
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		log.Fatalf("could not create weight initializer: %v", err)
	}
	sol, err := solver.NewDefaultAdam(0.0001, 32)
	if err != nil {
		log.Fatalf("could not create solver: %v", err)
	}

	// Exploration rate schedule
	decay, err := policy.NewDecay(0.9, 0.05, 0.0001)
	if err != nil {
		log.Fatalf("could not create exploration schedule: %v", err)
	}

	// Create the learning algorithm
	args := deepnav.Config{
		PolicyLayers: []int{128, 64},
		Biases:       []bool{true, true},
		Activations: []*network.Activation{
			network.ReLU(),
			network.ReLU(),
		},
		InitWFn:    init,
		Solver:     sol,
		Epsilon:    decay,
		Gamma:      0.99,
		FrameDepth: 4,
		HuberDelta: 1.0,
		ExpReplay: expreplay.Config{
			SampleMethod:      expreplay.Uniform,
			SampleSize:        32,
			MaxReplayCapacity: 10_000,
			MinReplayCapacity: 500,
		},
	}
	agent, err := deepnav.New(env, args, seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	// Experiment
	t := []trackers.Tracker{
		trackers.NewReturn("./returns.bin"),
		trackers.NewEpisodeLength("./lengths.bin"),
		trackers.NewTermination("./terminations.bin"),
	}
	check := []checkpointer.Checkpointer{
		checkpointer.NewNEpisode(10, agent,
			checkpointer.FilenameEnumerator(0, "./checkpoint", ".bin")),
	}
	e, err := experiment.NewOnline(env, agent, 300, 500, 4, seed, t, check)
	if err != nil {
		log.Fatalf("could not create experiment: %v", err)
	}
	if err := e.Run(); err != nil {
		log.Fatalf("experiment failed: %v", err)
	}
	e.Save()

	data := trackers.LoadData("./returns.bin")
	last := 10
	if len(data) < last {
		last = len(data)
	}
	fmt.Println(data[len(data)-last:])
}
