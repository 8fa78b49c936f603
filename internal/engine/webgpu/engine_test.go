package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessel-ml/tessel/internal/blur"
	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/internal/tensor"
)

// newGPUEngine skips the test when no adapter can be acquired.
func newGPUEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New()
	if err != nil {
		t.Skipf("no GPU available: %v", err)
	}
	t.Cleanup(e.Release)
	return e
}

func gpuTarget(t *testing.T, e *Engine) pipeline.Target {
	t.Helper()
	target := pipeline.FindGPUTarget(e)
	if !target.HasGPUFeature() {
		t.Skip("no GPU feature on this host")
	}
	return target
}

func TestCompileRejectsHostTarget(t *testing.T) {
	e := newGPUEngine(t)

	input, err := tensor.Rand(tensor.Shape{1, 1, 8, 8})
	require.NoError(t, err)
	p, err := blur.New(input)
	require.NoError(t, err)

	_, err = e.Compile(p, pipeline.HostTarget())
	assert.ErrorIs(t, err, pipeline.ErrUnsupportedTarget)
}

func TestManualScheduleMatchesReference(t *testing.T) {
	e := newGPUEngine(t)
	target := gpuTarget(t, e)

	input, err := tensor.Rand(tensor.Shape{4, 2, 34, 34})
	require.NoError(t, err)
	p, err := blur.New(input)
	require.NoError(t, err)
	require.NoError(t, blur.Schedule(p, target, ""))

	exec, err := e.Compile(p, target)
	require.NoError(t, err)
	defer exec.Release()

	out, err := p.NewOutputBuffer()
	require.NoError(t, err)
	require.NoError(t, exec.Run(out))
	require.NoError(t, exec.DeviceSync())

	want, err := blur.Reference(input)
	require.NoError(t, err)
	wdata := want.AsFloat32()
	for i, got := range out.AsFloat32() {
		require.InDelta(t, wdata[i], got, 1e-4, "element %d", i)
	}
}

func TestRootScheduleMatchesReference(t *testing.T) {
	e := newGPUEngine(t)
	target := gpuTarget(t, e)

	input, err := tensor.Rand(tensor.Shape{2, 2, 16, 16})
	require.NoError(t, err)
	p, err := blur.New(input)
	require.NoError(t, err)

	exec, err := e.Compile(p, target)
	require.NoError(t, err)
	defer exec.Release()

	out, err := p.NewOutputBuffer()
	require.NoError(t, err)
	require.NoError(t, exec.Run(out))
	require.NoError(t, exec.DeviceSync())

	want, err := blur.Reference(input)
	require.NoError(t, err)
	wdata := want.AsFloat32()
	for i, got := range out.AsFloat32() {
		require.InDelta(t, wdata[i], got, 1e-4, "element %d", i)
	}
}

func TestDeviceSyncBeforeRun(t *testing.T) {
	e := newGPUEngine(t)
	target := gpuTarget(t, e)

	input, err := tensor.Rand(tensor.Shape{1, 1, 8, 8})
	require.NoError(t, err)
	p, err := blur.New(input)
	require.NoError(t, err)

	exec, err := e.Compile(p, target)
	require.NoError(t, err)
	defer exec.Release()

	assert.Error(t, exec.DeviceSync())
}
