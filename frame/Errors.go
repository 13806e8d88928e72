package frame

import "errors"

// ShapeError implements errors unique to the frame pipeline.
type ShapeError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ShapeError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

var errNoChannelDim error = errors.New("frame has no channel dimension")

var errFrameSizeChanged = errors.New("frame size differs from window frames")

// IsInvalidShape returns whether or not an error reports that a frame
// was malformed. A malformed frame indicates a misconfigured frame
// source, so callers should treat such errors as fatal rather than
// skipping the offending frame. Skipping a frame would desynchronize
// the frame stack from the episode timeline.
func IsInvalidShape(err error) bool {
	if shapeErr, ok := err.(*ShapeError); ok {
		err = shapeErr.Err
	}
	return err == errNoChannelDim || err == errFrameSizeChanged
}
