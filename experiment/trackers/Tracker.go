// Package trackers implements Trackers, which track and save data in
// an experiment
package trackers

import (
	"encoding/gob"
	"log"
	"os"

	ts "sfneuman.com/gonav/timestep"
)

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save()
}

// LoadData loads and returns float64 data saved by a Tracker, such as
// episodic returns
func LoadData(filename string) []float64 {
	var data []float64
	decodeFile(filename, &data)
	return data
}

// LoadInts loads and returns integer data saved by a Tracker, such as
// episode lengths
func LoadInts(filename string) []int {
	var data []int
	decodeFile(filename, &data)
	return data
}

// decodeFile gob decodes the file at filename into data
func decodeFile(filename string, data interface{}) {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(data); err != nil {
		log.Fatalf("could not decode data: %v", err)
	}
}
