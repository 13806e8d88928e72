// Package checkpointer implements periodic saving of agents during
// experiments
package checkpointer

// Saver is an object that can persist itself to a file
type Saver interface {
	Save(path string) error
}

// Checkpointer checkpoints/saves Savers based on episode numbers
type Checkpointer interface {
	Checkpoint(episode int) error
}
