package pipeline

import (
	"errors"

	"github.com/tessel-ml/tessel/internal/tensor"
)

// ErrUnsupportedTarget is returned by scheduling steps when the resolved
// target carries no GPU feature. A pipeline must never be benchmarked
// unscheduled; callers are expected to check for this error and abort.
var ErrUnsupportedTarget = errors.New("pipeline: target has no GPU feature")

// Engine compiles pipelines for a target. Implementations:
//   - engine/cpu: pure Go reference engine
//   - engine/webgpu: WGSL-emitting GPU engine
type Engine interface {
	// Name returns the engine name (e.g. "cpu", "webgpu").
	Name() string

	// Compile just-in-time compiles the pipeline for the target,
	// honoring the schedules attached to its stages. Compilation
	// failures are not recoverable by the harness.
	Compile(p *Pipeline, t Target) (Executable, error)
}

// Executable is a compiled pipeline bound to its engine's device state.
// It is exclusively owned by a single benchmark run; no concurrent use.
type Executable interface {
	// Run realizes the pipeline into the output buffer. Device work may
	// still be in flight when Run returns; DeviceSync is the completion
	// barrier.
	Run(out *tensor.RawTensor) error

	// DeviceSync blocks until all dispatched device work has completed
	// and the last Run's results are host-visible in the output buffer.
	DeviceSync() error

	// Release frees device resources held by the executable.
	Release()
}
