// Copyright 2025 The Tessel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference engine.
//
// The CPU engine compiles a pipeline into nested loops and is the
// deterministic baseline the GPU engine is validated against.
//
// Example:
//
//	engine := cpu.New()
//	exec, err := engine.Compile(p, pipeline.HostTarget())
package cpu

import (
	internalcpu "github.com/tessel-ml/tessel/internal/engine/cpu"
	"github.com/tessel-ml/tessel/pipeline"
)

// Engine is the CPU reference engine.
type Engine = internalcpu.Engine

// Compile-time check that Engine implements pipeline.Engine.
var _ pipeline.Engine = (*Engine)(nil)

// New creates a CPU engine.
func New() *Engine {
	return internalcpu.New()
}
