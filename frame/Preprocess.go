// Package frame implements preprocessing and temporal stacking of raw
// image observations
package frame

import (
	"fmt"

	"gorgonia.org/tensor"
)

// MaxPixel is the largest channel intensity of a raw frame. Raw frames
// hold channel values in [0, MaxPixel].
const MaxPixel float64 = 255.0

// Preprocess converts a raw multi-channel image frame of shape
// (rows, cols, channels) into a single-channel luminance frame of shape
// (rows, cols) with intensities scaled into [0, 1]. The luminance of a
// pixel is the mean of its channel values divided by MaxPixel.
//
// Preprocess is a pure function. It returns a ShapeError if the frame
// lacks a channel dimension.
func Preprocess(f *tensor.Dense) (*tensor.Dense, error) {
	if f == nil {
		return nil, &ShapeError{Op: "preprocess", Err: errNoChannelDim}
	}

	shape := f.Shape()
	if len(shape) != 3 {
		return nil, &ShapeError{Op: "preprocess", Err: errNoChannelDim}
	}

	if f.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("preprocess: frames must be float64, got %v",
			f.Dtype())
	}

	rows, cols, channels := shape[0], shape[1], shape[2]
	raw := f.Data().([]float64)

	luminance := make([]float64, rows*cols)
	for i := range luminance {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += raw[i*channels+c]
		}
		luminance[i] = sum / float64(channels) / MaxPixel
	}

	return tensor.New(
		tensor.WithShape(rows, cols),
		tensor.WithBacking(luminance),
	), nil
}
