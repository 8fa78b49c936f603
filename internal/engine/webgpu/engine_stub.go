//go:build !windows

// Package webgpu implements the GPU engine. The wgpu_native runtime the
// go-webgpu bindings load is only shipped for windows; on other platforms
// the engine reports itself unavailable and target resolution falls back
// to the plain host target.
package webgpu

import (
	"fmt"

	"github.com/tessel-ml/tessel/internal/pipeline"
)

// Engine is the unavailable-platform placeholder for the WebGPU engine.
type Engine struct{}

// New reports that WebGPU is not available on this platform.
func New() (*Engine, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}

// Name returns the engine name.
func (e *Engine) Name() string { return "WebGPU (unavailable)" }

// Probe implements pipeline.Prober; no feature is supported.
func (e *Engine) Probe(pipeline.Feature) (pipeline.AdapterInfo, bool) {
	return pipeline.AdapterInfo{}, false
}

// Compile always fails on this platform.
func (e *Engine) Compile(*pipeline.Pipeline, pipeline.Target) (pipeline.Executable, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}

// Release is a no-op.
func (e *Engine) Release() {}

// IsAvailable reports whether WebGPU is available on this system.
func IsAvailable() bool { return false }
