package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(Shape{2, 3}))
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, Float32, raw.DType())

	// Zero-initialized.
	for _, v := range raw.AsFloat32() {
		assert.Zero(t, v)
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	_, err := NewRaw(Shape{2, 0}, Float32)
	assert.Error(t, err)
}

func TestAtSetAt(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32)
	require.NoError(t, err)

	raw.SetAt(4.5, 1, 2)
	assert.Equal(t, float32(4.5), raw.At(1, 2))
	assert.Equal(t, float32(4.5), raw.AsFloat32()[1*3+2])

	assert.Panics(t, func() { raw.At(0) })
	assert.Panics(t, func() { raw.At(2, 0) })
}

func TestFromSlice(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, float32(6), raw.At(1, 2))

	_, err = FromSlice([]float32{1, 2}, Shape{2, 3})
	assert.Error(t, err)
}

func TestFull(t *testing.T) {
	raw, err := Full(Shape{3, 3}, 2.5)
	require.NoError(t, err)
	for _, v := range raw.AsFloat32() {
		assert.Equal(t, float32(2.5), v)
	}
}

func TestRand(t *testing.T) {
	raw, err := Rand(Shape{100})
	require.NoError(t, err)
	for _, v := range raw.AsFloat32() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

func TestClone(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)

	clone := raw.Clone()
	clone.SetAt(9, 0, 0)

	assert.Equal(t, float32(1), raw.At(0, 0))
	assert.Equal(t, float32(9), clone.At(0, 0))
}
