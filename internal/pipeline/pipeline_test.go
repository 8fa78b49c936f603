package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessel-ml/tessel/internal/tensor"
)

func newInput(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Rand(shape)
	require.NoError(t, err)
	return raw
}

func TestNewValidation(t *testing.T) {
	input := newInput(t, tensor.Shape{2, 3, 8, 8})

	_, err := New(nil, NewAverageStage("s", 2, 3))
	assert.Error(t, err)

	_, err = New(input)
	assert.Error(t, err, "at least one stage required")

	_, err = New(input, NewAverageStage("s", 4, 3))
	assert.Error(t, err, "stencil dimension out of range")

	_, err = New(input, NewAverageStage("s", 2, 0))
	assert.Error(t, err, "taps must be >= 1")

	// 3-tap stencil over an extent-3 dimension leaves extent 1; a second
	// pass over the same dimension must fail.
	small := newInput(t, tensor.Shape{1, 1, 3, 8})
	_, err = New(small, NewAverageStage("a", 2, 3), NewAverageStage("b", 2, 3))
	assert.Error(t, err)
}

func TestOutputShape(t *testing.T) {
	input := newInput(t, tensor.Shape{32, 8, 258, 258})
	p, err := New(input,
		NewAverageStage("producer", 2, 3),
		NewAverageStage("consumer", 3, 3),
	)
	require.NoError(t, err)

	assert.True(t, p.OutputShape().Equal(tensor.Shape{32, 8, 256, 256}))
	assert.True(t, p.StageShape(0).Equal(tensor.Shape{32, 8, 256, 258}))
	assert.True(t, p.StageShape(1).Equal(tensor.Shape{32, 8, 256, 256}))
	assert.Equal(t, "consumer", p.Consumer().Name())
}

func TestNewOutputBuffer(t *testing.T) {
	input := newInput(t, tensor.Shape{2, 3, 10, 12})
	p, err := New(input,
		NewAverageStage("producer", 2, 3),
		NewAverageStage("consumer", 3, 3),
	)
	require.NoError(t, err)

	out, err := p.NewOutputBuffer()
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3, 8, 10}))
}

func TestStageEstimates(t *testing.T) {
	s := NewAverageStage("s", 2, 3)
	assert.Nil(t, s.Estimates())

	s.SetEstimates(Range{0, 32}, Range{0, 8})
	assert.Equal(t, []Range{{0, 32}, {0, 8}}, s.Estimates())
}

func TestStageScale(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, NewAverageStage("s", 0, 3).Scale(), 1e-7)
}

func TestScheduleIsDefault(t *testing.T) {
	assert.True(t, Schedule{}.IsDefault())
	assert.False(t, Schedule{ComputeAt: true}.IsDefault())
	assert.False(t, Schedule{Tiling: &TileSpec{}}.IsDefault())
}
