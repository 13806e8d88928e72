package trackers

import (
	"encoding/gob"
	"log"
	"os"

	"sfneuman.com/gonav/timestep"
)

// EpisodeLength tracks the lengths of the episodes of an experiment.
//
// Episodes must finish for their lengths to be recorded. The length of
// an unfinished final episode is not saved.
type EpisodeLength struct {
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker saving its data
// at filename
func NewEpisodeLength(filename string) Tracker {
	return &EpisodeLength{filename: filename}
}

// Track records the number of an episode's final timestep as the
// episode's length. Timesteps in an episode-in-progress are ignored.
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, t.Number)
	}
}

// Save saves the tracked episode lengths to disk
func (e *EpisodeLength) Save() {
	file, err := os.Create(e.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(e.episodeLengths); err != nil {
		log.Fatalf("could not encode episode length data: %v", err)
	}
}
