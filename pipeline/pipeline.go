// Copyright 2025 The Tessel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pipeline provides the public API for declarative stage graphs,
// scheduling directives, target resolution, and the engine boundary.
//
// A pipeline is a chain of averaging-stencil stages over an input
// tensor. Engines (engine/cpu, engine/webgpu) compile a pipeline for a
// target and return an Executable that realizes it into output buffers.
//
// Example:
//
//	producer := pipeline.NewAverageStage("producer", 2, 3)
//	consumer := pipeline.NewAverageStage("consumer", 3, 3)
//	p, err := pipeline.New(input, producer, consumer)
//	target := pipeline.FindGPUTarget(engine)
//	exec, err := engine.Compile(p, target)
package pipeline

import (
	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/tensor"
)

// Pipeline is a linear chain of stencil stages over an input tensor.
type Pipeline = pipeline.Pipeline

// Stage is a named averaging stencil along one dimension.
type Stage = pipeline.Stage

// Range describes an estimated iteration range for one dimension.
type Range = pipeline.Range

// Schedule carries the scheduling directives for a stage.
type Schedule = pipeline.Schedule

// TileSpec is a manual GPU tile/fuse/block/thread mapping.
type TileSpec = pipeline.TileSpec

// Target describes the host/GPU combination a pipeline is compiled for.
type Target = pipeline.Target

// Feature identifies a GPU backend API the host may support.
type Feature = pipeline.Feature

// Supported GPU backend features.
const (
	FeatureNone   Feature = pipeline.FeatureNone
	FeatureMetal  Feature = pipeline.FeatureMetal
	FeatureVulkan Feature = pipeline.FeatureVulkan
	FeatureD3D12  Feature = pipeline.FeatureD3D12
	FeatureOpenGL Feature = pipeline.FeatureOpenGL
)

// Limits describes the compute dispatch limits of a target's device.
type Limits = pipeline.Limits

// AdapterInfo describes a probed GPU adapter.
type AdapterInfo = pipeline.AdapterInfo

// Prober answers host capability queries for candidate GPU features.
type Prober = pipeline.Prober

// Engine compiles pipelines for a target.
type Engine = pipeline.Engine

// Executable is a compiled pipeline bound to its engine's device state.
type Executable = pipeline.Executable

// Autoscheduler derives schedules from estimates and device limits.
type Autoscheduler = pipeline.Autoscheduler

// Sentinel errors.
var (
	ErrUnsupportedTarget    = pipeline.ErrUnsupportedTarget
	ErrUnknownAutoscheduler = pipeline.ErrUnknownAutoscheduler
)

// New validates and builds a pipeline from an input tensor and stages.
func New(input *tensor.RawTensor, stages ...*Stage) (*Pipeline, error) {
	return pipeline.New(input, stages...)
}

// NewAverageStage creates a stencil stage averaging taps samples along
// the given dimension index.
func NewAverageStage(name string, along, taps int) *Stage {
	return pipeline.NewAverageStage(name, along, taps)
}

// HostTarget returns the plain host target with no GPU feature.
func HostTarget() Target { return pipeline.HostTarget() }

// CandidateFeatures returns the ranked GPU features for the given OS.
func CandidateFeatures(goos string) []Feature {
	return pipeline.CandidateFeatures(goos)
}

// FindGPUTarget probes candidates and returns the first supported
// target, or the plain host target when none is supported.
func FindGPUTarget(p Prober) Target { return pipeline.FindGPUTarget(p) }

// RegisterAutoscheduler registers a named autoscheduling algorithm.
func RegisterAutoscheduler(name string, a Autoscheduler) {
	pipeline.RegisterAutoscheduler(name, a)
}

// LoadAutoscheduler resolves a registered autoscheduler by name.
func LoadAutoscheduler(name string) (Autoscheduler, error) {
	return pipeline.LoadAutoscheduler(name)
}

// Autoschedulers returns the sorted names of all registered algorithms.
func Autoschedulers() []string { return pipeline.Autoschedulers() }
