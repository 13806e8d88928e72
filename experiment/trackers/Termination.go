package trackers

import (
	"encoding/gob"
	"log"
	"os"

	"sfneuman.com/gonav/timestep"
)

// Termination tracks how each episode of an experiment ended: 1 for
// episodes ending at a terminal state, such as a collision with an
// obstacle, and 0 for episodes timing out at a step limit.
//
// Over the course of training, the fraction of episodes ending in
// collisions should fall as the agent learns to avoid obstacles.
type Termination struct {
	terminations []int
	filename     string
}

// NewTermination returns a new Termination tracker saving its data at
// filename
func NewTermination(filename string) Tracker {
	return &Termination{filename: filename}
}

// Track records the ending type of an episode's final timestep.
// Timesteps in an episode-in-progress are ignored.
func (c *Termination) Track(t timestep.TimeStep) {
	if !t.Last() {
		return
	}

	if t.TerminalEnd() {
		c.terminations = append(c.terminations, 1)
	} else {
		c.terminations = append(c.terminations, 0)
	}
}

// Save saves the tracked episode endings to disk
func (c *Termination) Save() {
	file, err := os.Create(c.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(c.terminations); err != nil {
		log.Fatalf("could not encode termination data: %v", err)
	}
}
