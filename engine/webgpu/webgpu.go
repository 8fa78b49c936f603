// Copyright 2025 The Tessel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU engine backed by WebGPU.
//
// The engine JIT-compiles pipelines into WGSL compute shaders through
// go-webgpu (github.com/go-webgpu/webgpu). On platforms without the
// wgpu_native runtime the engine reports itself unavailable and target
// resolution falls back to the plain host target.
//
// Example:
//
//	engine, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Release()
//
//	target := pipeline.FindGPUTarget(engine)
//	exec, err := engine.Compile(p, target)
package webgpu

import (
	internalwebgpu "github.com/tessel-ml/tessel/internal/engine/webgpu"
	"github.com/tessel-ml/tessel/pipeline"
)

// Engine is the WebGPU engine.
type Engine = internalwebgpu.Engine

// Compile-time checks that Engine implements the pipeline interfaces.
var (
	_ pipeline.Engine = (*Engine)(nil)
	_ pipeline.Prober = (*Engine)(nil)
)

// New creates a WebGPU engine. Returns an error if WebGPU initialization
// fails (e.g. no compatible GPU or missing native runtime).
func New() (*Engine, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system. It is
// useful for graceful fallback when no GPU is present.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
