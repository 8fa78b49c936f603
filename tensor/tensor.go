// Copyright 2025 The Tessel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense tensors used by
// the pipeline harness.
package tensor

import (
	"github.com/tessel-ml/tessel/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{32, 8, 258, 258} is a 4-D tensor.
type Shape = tensor.Shape

// RawTensor is the low-level tensor representation: a flat buffer with a
// shape and row-major strides.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-initialized tensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice creates a float32 tensor from existing data.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a float32 tensor filled with a specific value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	return tensor.Full(shape, value)
}

// Rand creates a float32 tensor with values uniformly distributed in [0, 1).
func Rand(shape Shape) (*RawTensor, error) {
	return tensor.Rand(shape)
}
