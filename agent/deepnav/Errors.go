// Package deepnav implements a deep Q-learning agent for navigation
// environments
package deepnav

import (
	"errors"
	"fmt"
)

// BatchShapeError is returned when a batch sampled from the replay
// buffer does not match the shapes the value function trains on.
type BatchShapeError struct {
	Op  string
	Err error
}

func (e *BatchShapeError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *BatchShapeError) Unwrap() error {
	return e.Err
}

// IsBatchShape returns whether err records a mismatch between a
// sampled batch and the value function's shapes
func IsBatchShape(err error) bool {
	var batchErr *BatchShapeError
	return errors.As(err, &batchErr)
}
