package blur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/internal/tensor"
)

func newPipeline(t *testing.T, shape tensor.Shape) *pipeline.Pipeline {
	t.Helper()
	input, err := tensor.Rand(shape)
	require.NoError(t, err)
	p, err := New(input)
	require.NoError(t, err)
	return p
}

func TestNewRejectsWrongRank(t *testing.T) {
	input, err := tensor.Rand(tensor.Shape{8, 8})
	require.NoError(t, err)
	_, err = New(input)
	assert.Error(t, err)
}

func TestOutputShape(t *testing.T) {
	p := newPipeline(t, tensor.Shape{32, 8, 258, 258})
	assert.True(t, p.OutputShape().Equal(tensor.Shape{32, 8, 256, 256}))
}

func TestScheduleRejectsHostTarget(t *testing.T) {
	p := newPipeline(t, tensor.Shape{1, 1, 8, 8})
	err := Schedule(p, pipeline.HostTarget(), "")
	assert.ErrorIs(t, err, pipeline.ErrUnsupportedTarget)
}

func TestManualScheduleTiled(t *testing.T) {
	for _, feature := range []pipeline.Feature{
		pipeline.FeatureMetal, pipeline.FeatureVulkan, pipeline.FeatureD3D12,
	} {
		t.Run(feature.String(), func(t *testing.T) {
			p := newPipeline(t, tensor.Shape{1, 1, 8, 8})
			require.NoError(t, Schedule(p, pipeline.Target{Feature: feature}, ""))

			sched := p.Consumer().Schedule()
			require.NotNil(t, sched.Tiling)
			assert.True(t, sched.ComputeAt)
			assert.Equal(t, DimBatch, sched.Tiling.FuseA)
			assert.Equal(t, DimChannel, sched.Tiling.FuseB)
			assert.Equal(t, DimX, sched.Tiling.TileDim)
			assert.Equal(t, 32, sched.Tiling.TileW)
			assert.Equal(t, 32, sched.Tiling.TileH)
		})
	}
}

func TestManualScheduleOpenGLStaysDefault(t *testing.T) {
	p := newPipeline(t, tensor.Shape{1, 1, 8, 8})
	require.NoError(t, Schedule(p, pipeline.Target{Feature: pipeline.FeatureOpenGL}, ""))
	assert.True(t, p.Consumer().Schedule().IsDefault())
}

func TestScheduleUnknownAutoscheduler(t *testing.T) {
	p := newPipeline(t, tensor.Shape{1, 1, 8, 8})
	err := Schedule(p, pipeline.Target{Feature: pipeline.FeatureVulkan}, "does-not-exist")
	assert.ErrorIs(t, err, pipeline.ErrUnknownAutoscheduler)
}

func TestScheduleAutoschedulerSetsEstimates(t *testing.T) {
	p := newPipeline(t, tensor.Shape{4, 2, 34, 34})
	target := pipeline.Target{
		Feature: pipeline.FeatureVulkan,
		Limits:  pipeline.Limits{MaxInvocationsPerWorkgroup: 256},
	}
	require.NoError(t, Schedule(p, target, "greedy"))

	// Estimates come from the input extents before the autoscheduler runs.
	assert.Equal(t, []pipeline.Range{{Min: 0, Extent: 4}, {Min: 0, Extent: 2}, {Min: 0, Extent: 34}, {Min: 0, Extent: 34}},
		p.Consumer().Estimates())
	require.NotNil(t, p.Consumer().Schedule().Tiling)
	assert.True(t, p.Consumer().Schedule().ComputeAt)
}

func TestReferenceFlatField(t *testing.T) {
	input, err := tensor.Full(tensor.Shape{1, 1, 6, 6}, 3)
	require.NoError(t, err)

	out, err := Reference(input)
	require.NoError(t, err)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 4, 4}))
	for i, v := range out.AsFloat32() {
		assert.InDelta(t, 3, v, 1e-6, "element %d", i)
	}
}

func TestReferenceSingleElement(t *testing.T) {
	// A 3x3 window reduces to a single output holding the 9-point mean.
	input, err := tensor.FromSlice([]float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3})
	require.NoError(t, err)

	out, err := Reference(input)
	require.NoError(t, err)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 1, 1}))
	assert.InDelta(t, 5, out.At(0, 0, 0, 0), 1e-6)
}
