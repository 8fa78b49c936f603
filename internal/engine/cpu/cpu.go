// Package cpu implements the pure Go reference engine. It compiles a
// pipeline into nested loops, honoring the consumer's schedule: with
// ComputeAt the producer is inlined at the consumer's tile granularity,
// otherwise every stage materializes a root buffer.
package cpu

import (
	"fmt"

	"github.com/tessel-ml/tessel/internal/parallel"
	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/internal/tensor"
)

// Engine is the CPU reference engine. It ignores GPU features on the
// target and always executes on the host.
type Engine struct{}

// New creates a CPU engine.
func New() *Engine {
	return &Engine{}
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return "CPU"
}

// Compile builds an executable for the pipeline. The target is accepted
// for interface symmetry; CPU execution has no device constraints.
func (e *Engine) Compile(p *pipeline.Pipeline, _ pipeline.Target) (pipeline.Executable, error) {
	sched := p.Consumer().Schedule()

	if sched.ComputeAt {
		if len(p.Stages()) != 2 {
			return nil, fmt.Errorf("cpu: compute-at fusion requires a two-stage chain, got %d stages", len(p.Stages()))
		}
		if rank := len(p.Input().Shape()); rank != 4 {
			return nil, fmt.Errorf("cpu: compute-at fusion requires rank-4 pipelines, got rank %d", rank)
		}
		spec := sched.Tiling
		if spec == nil {
			spec = &pipeline.TileSpec{FuseA: 0, FuseB: 1, TileDim: 2, TileW: 32, TileH: 32}
		}
		if spec.FuseA != 0 || spec.FuseB != 1 || spec.TileDim != 2 {
			return nil, fmt.Errorf("cpu: unsupported tile mapping (fuse %d,%d tile %d)",
				spec.FuseA, spec.FuseB, spec.TileDim)
		}
		return &executable{p: p, fused: true, spec: spec, par: parallel.TileConfig()}, nil
	}

	return &executable{p: p, par: parallel.DefaultConfig()}, nil
}

// executable is a compiled CPU pipeline.
type executable struct {
	p     *pipeline.Pipeline
	fused bool
	spec  *pipeline.TileSpec
	par   parallel.Config
}

// Run realizes the pipeline into out synchronously.
func (ex *executable) Run(out *tensor.RawTensor) error {
	if want := ex.p.OutputShape(); !out.Shape().Equal(want) {
		return fmt.Errorf("cpu: output shape %v does not match pipeline output %v", out.Shape(), want)
	}
	if ex.fused {
		ex.runFusedTiled(out)
		return nil
	}
	return ex.runRoot(out)
}

// DeviceSync is a no-op; CPU execution is synchronous.
func (ex *executable) DeviceSync() error { return nil }

// Release is a no-op; the executable holds no device resources.
func (ex *executable) Release() {}

// runRoot materializes every stage in order, the last directly into out.
func (ex *executable) runRoot(out *tensor.RawTensor) error {
	stages := ex.p.Stages()
	src := ex.p.Input()
	for i, s := range stages {
		var dst *tensor.RawTensor
		if i == len(stages)-1 {
			dst = out
		} else {
			var err error
			dst, err = tensor.NewRaw(ex.p.StageShape(i), tensor.Float32)
			if err != nil {
				return fmt.Errorf("cpu: allocating stage %q buffer: %w", s.Name(), err)
			}
		}
		evalStageInto(dst, src, s.Along(), s.Taps(), s.Scale(), ex.par)
		src = dst
	}
	return nil
}

// evalStageInto computes one averaging stencil pass. dst's shape is the
// src shape shrunk by taps-1 along the stencil dimension; each output
// element decomposes its flat index into source coordinates through the
// strides, so iterations are independent and run across workers.
func evalStageInto(dst, src *tensor.RawTensor, along, taps int, scale float32, cfg parallel.Config) {
	dstStrides := dst.Shape().ComputeStrides()
	sdata := src.AsFloat32()
	ddata := dst.AsFloat32()
	sstr := src.Strides()
	step := sstr[along]

	parallel.For(len(ddata), func(i int) {
		rem := i
		base := 0
		for d, ds := range dstStrides {
			base += (rem / ds) * sstr[d]
			rem %= ds
		}
		sum := float32(0)
		for k := 0; k < taps; k++ {
			sum += sdata[base+k*step]
		}
		ddata[i] = sum * scale
	}, cfg)
}

// runFusedTiled walks the consumer's tile loop nest and computes the
// producer inline at the innermost granularity, mirroring the GPU
// block/thread mapping: tiles over the fused (batch, channel) index and
// the first spatial dimension, the remaining dimension innermost. Fused
// tiles write disjoint output regions and run across workers.
func (ex *executable) runFusedTiled(out *tensor.RawTensor) {
	producer := ex.p.Stages()[0]
	consumer := ex.p.Stages()[1]
	input := ex.p.Input()

	shape := out.Shape()
	channels := shape[1]
	fusedExtent := shape[0] * channels
	extentX := shape[2]
	extentY := shape[3]

	istr := input.Strides()
	ostr := out.Strides()
	idata := input.AsFloat32()
	odata := out.AsFloat32()

	stepP := istr[producer.Along()]
	stepC := istr[consumer.Along()]
	scale := producer.Scale() * consumer.Scale()
	tapsP := producer.Taps()
	tapsC := consumer.Taps()

	tiles := (fusedExtent + ex.spec.TileW - 1) / ex.spec.TileW
	parallel.For(tiles, func(ti int) {
		fo := ti * ex.spec.TileW
		fhi := min(fo+ex.spec.TileW, fusedExtent)
		for xo := 0; xo < extentX; xo += ex.spec.TileH {
			xhi := min(xo+ex.spec.TileH, extentX)
			for f := fo; f < fhi; f++ {
				n := f / channels
				c := f % channels
				for x := xo; x < xhi; x++ {
					inBase := n*istr[0] + c*istr[1] + x*istr[2]
					outBase := n*ostr[0] + c*ostr[1] + x*ostr[2]
					for y := 0; y < extentY; y++ {
						sum := float32(0)
						base := inBase + y*istr[3]
						for j := 0; j < tapsC; j++ {
							for i := 0; i < tapsP; i++ {
								sum += idata[base+j*stepC+i*stepP]
							}
						}
						odata[outBase+y*ostr[3]] = sum * scale
					}
				}
			}
		}
	}, ex.par)
}
