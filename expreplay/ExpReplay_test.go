package expreplay

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gonav/timestep"
)

// newTransition returns a transition whose fields are derived from id
// so that sampled transitions can be identified by their rewards
func newTransition(id int, stateSize, positionSize int) timestep.Transition {
	state := make([]float64, stateSize)
	nextState := make([]float64, stateSize)
	for i := range state {
		state[i] = float64(id)
		nextState[i] = float64(id) + 0.5
	}

	position := mat.NewVecDense(positionSize, nil)
	nextPosition := mat.NewVecDense(positionSize, nil)

	return timestep.NewTransition(state, position, id%4, float64(id),
		nextState, nextPosition, false)
}

// TestAddEvictsOldest checks that a full buffer always evicts its
// oldest transition
func TestAddEvictsOldest(t *testing.T) {
	sampler := NewFifoSelector(3)
	buffer, err := New(sampler, 1, 3, 2, 2, 4)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}

	// Insert past capacity so that the first two transitions are
	// evicted
	for id := 1; id <= 5; id++ {
		if err := buffer.Add(newTransition(id, 2, 2)); err != nil {
			t.Fatalf("could not add transition %v: %v", id, err)
		}
	}

	if buffer.Capacity() != 3 {
		t.Fatalf("got capacity %v, expected 3", buffer.Capacity())
	}

	_, _, _, rewards, _, _, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample buffer: %v", err)
	}

	// The Fifo selector returns the oldest stored transitions first
	expected := []float64{3, 4, 5}
	for i := range expected {
		if rewards[i] != expected[i] {
			t.Errorf("sample %v: got reward %v, expected %v", i,
				rewards[i], expected[i])
		}
	}
}

// TestSampleDistinct checks that uniform sampling never returns the
// same transition twice in one batch
func TestSampleDistinct(t *testing.T) {
	batchSize := 5
	sampler := NewUniformSelector(batchSize, 14)
	buffer, err := New(sampler, 1, 5, 2, 2, 4)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}

	for id := 1; id <= 5; id++ {
		if err := buffer.Add(newTransition(id, 2, 2)); err != nil {
			t.Fatalf("could not add transition %v: %v", id, err)
		}
	}

	// With a batch as large as the buffer, distinct sampling must
	// return every stored transition exactly once
	for trial := 0; trial < 10; trial++ {
		_, _, _, rewards, _, _, _, err := buffer.Sample()
		if err != nil {
			t.Fatalf("could not sample buffer: %v", err)
		}

		seen := make(map[float64]bool)
		for _, reward := range rewards {
			if seen[reward] {
				t.Fatalf("trial %v: transition with reward %v sampled "+
					"twice in one batch", trial, reward)
			}
			seen[reward] = true
		}
	}
}

// TestSampleInsufficient checks that sampling fails until the buffer
// reaches its minimum capacity
func TestSampleInsufficient(t *testing.T) {
	sampler := NewUniformSelector(2, 14)
	buffer, err := New(sampler, 4, 8, 2, 2, 4)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}

	if _, _, _, _, _, _, _, err := buffer.Sample(); !IsEmptyBuffer(err) {
		t.Errorf("got error %v, expected an empty buffer error", err)
	}

	for id := 1; id <= 2; id++ {
		if err := buffer.Add(newTransition(id, 2, 2)); err != nil {
			t.Fatalf("could not add transition %v: %v", id, err)
		}
	}

	if buffer.SampleAvailable(2) {
		t.Error("buffer below its minimum capacity should not be " +
			"sampleable")
	}
	_, _, _, _, _, _, _, err = buffer.Sample()
	if !IsInsufficientSamples(err) {
		t.Errorf("got error %v, expected an insufficient samples error",
			err)
	}

	// Reaching the minimum capacity makes the buffer sampleable
	for id := 3; id <= 4; id++ {
		if err := buffer.Add(newTransition(id, 2, 2)); err != nil {
			t.Fatalf("could not add transition %v: %v", id, err)
		}
	}
	if !buffer.SampleAvailable(2) {
		t.Error("buffer at its minimum capacity should be sampleable")
	}
}

// TestAddOneHotActions checks that stored actions are sampled as
// one-hot vectors
func TestAddOneHotActions(t *testing.T) {
	numActions := 4
	sampler := NewFifoSelector(1)
	buffer, err := New(sampler, 1, 1, 2, 2, numActions)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}

	action := 2
	transition := newTransition(1, 2, 2)
	transition.Action = action
	if err := buffer.Add(transition); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	_, _, actions, _, _, _, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample buffer: %v", err)
	}

	for i := 0; i < numActions; i++ {
		expected := 0.0
		if i == action {
			expected = 1.0
		}
		if actions[i] != expected {
			t.Errorf("action element %v: got %v, expected %v", i,
				actions[i], expected)
		}
	}
}
