package trackers

import (
	"path/filepath"
	"testing"

	"sfneuman.com/gonav/timestep"
)

func step(t timestep.StepType, reward float64, number int,
	end timestep.EndType) timestep.TimeStep {
	s := timestep.New(t, reward, 0.99, nil, nil, number)
	s.SetEnd(end)
	return s
}

// TestReturnTracksEpisodes checks that episodic returns are
// accumulated per episode and survive a save and load round trip
func TestReturnTracksEpisodes(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	tracker := NewReturn(filename)

	// Two episodes of two environment steps each
	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))
	tracker.Track(step(timestep.Mid, -0.01, 1, timestep.Nil))
	tracker.Track(step(timestep.Last, 1.0, 2, timestep.Timeout))

	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))
	tracker.Track(step(timestep.Mid, -0.01, 1, timestep.Nil))
	tracker.Track(step(timestep.Last, -1.0, 2,
		timestep.TerminalStateReached))

	tracker.Save()
	returns := LoadData(filename)

	expected := []float64{0.99, -1.01}
	if len(returns) != len(expected) {
		t.Fatalf("got %v returns, expected %v", len(returns),
			len(expected))
	}
	for i := range expected {
		if returns[i] != expected[i] {
			t.Errorf("return %v: got %v, expected %v", i, returns[i],
				expected[i])
		}
	}
}

// TestReturnPanicsNonSequential checks that tracking non-sequential
// timesteps panics
func TestReturnPanicsNonSequential(t *testing.T) {
	tracker := NewReturn(filepath.Join(t.TempDir(), "returns.bin"))
	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))

	defer func() {
		if recover() == nil {
			t.Error("expected a panic tracking non-sequential timesteps")
		}
	}()
	tracker.Track(step(timestep.Mid, 0, 2, timestep.Nil))
}

// TestEpisodeLength checks that episode lengths are recorded from
// final timesteps only
func TestEpisodeLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	tracker := NewEpisodeLength(filename)

	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))
	tracker.Track(step(timestep.Mid, 0, 1, timestep.Nil))
	tracker.Track(step(timestep.Last, 0, 2, timestep.Timeout))
	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))
	tracker.Track(step(timestep.Last, 0, 1,
		timestep.TerminalStateReached))

	tracker.Save()
	lengths := LoadInts(filename)

	expected := []int{2, 1}
	if len(lengths) != len(expected) {
		t.Fatalf("got %v lengths, expected %v", len(lengths),
			len(expected))
	}
	for i := range expected {
		if lengths[i] != expected[i] {
			t.Errorf("length %v: got %v, expected %v", i, lengths[i],
				expected[i])
		}
	}
}

// TestTermination checks that episode endings are recorded as
// terminations or timeouts
func TestTermination(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "terminations.bin")
	tracker := NewTermination(filename)

	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))
	tracker.Track(step(timestep.Last, -1, 1,
		timestep.TerminalStateReached))
	tracker.Track(step(timestep.First, 0, 0, timestep.Nil))
	tracker.Track(step(timestep.Mid, 0, 1, timestep.Nil))
	tracker.Track(step(timestep.Last, 0, 2, timestep.Timeout))

	tracker.Save()
	endings := LoadInts(filename)

	expected := []int{1, 0}
	if len(endings) != len(expected) {
		t.Fatalf("got %v endings, expected %v", len(endings),
			len(expected))
	}
	for i := range expected {
		if endings[i] != expected[i] {
			t.Errorf("ending %v: got %v, expected %v", i, endings[i],
				expected[i])
		}
	}
}
