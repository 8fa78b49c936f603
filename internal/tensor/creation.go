package tensor

import (
	"fmt"
	"math/rand"
)

// FromSlice creates a float32 tensor from existing data.
// The data length must match the shape's element count.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	if len(data) != raw.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape element count %d", len(data), raw.NumElements())
	}
	copy(raw.AsFloat32(), data)
	return raw, nil
}

// Full creates a float32 tensor filled with a specific value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = value
	}
	return raw, nil
}

// Rand creates a float32 tensor with values uniformly distributed in [0, 1).
// Uses math/rand; benchmark inputs do not need cryptographic randomness.
func Rand(shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = rand.Float32() //nolint:gosec // G404: benchmark input data
	}
	return raw, nil
}
