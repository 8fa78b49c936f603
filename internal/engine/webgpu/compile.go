//go:build windows

package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/internal/tensor"
)

// unsafeByteSlice views a mapped GPU range as a byte slice.
//
//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
func unsafeByteSlice(ptr unsafe.Pointer, size uint64) []byte {
	return unsafe.Slice((*byte)(ptr), size)
}

// pass is one compiled compute dispatch.
type pass struct {
	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
	groupsX   uint32
	groupsY   uint32
	groupsZ   uint32
}

// executable is a compiled GPU pipeline: the input uploaded once, one
// storage buffer per materialized stage, and the dispatch sequence.
type executable struct {
	engine  *Engine
	passes  []pass
	buffers []*wgpu.Buffer // all owned buffers, input first, output last
	outBuf  *wgpu.Buffer
	outSize uint64
	shape   tensor.Shape

	// out is the host buffer bound by the last Run; DeviceSync copies
	// device results into it.
	out *tensor.RawTensor
}

// Compile JIT-compiles the pipeline for the target. With a ComputeAt
// schedule the producer is inlined into a single fused shader whose
// workgroup mapping follows the tile spec; otherwise each stage compiles
// to its own shader and materializes a device buffer.
func (e *Engine) Compile(p *pipeline.Pipeline, t pipeline.Target) (pipeline.Executable, error) {
	if !t.HasGPUFeature() {
		return nil, pipeline.ErrUnsupportedTarget
	}

	input := p.Input()
	//nolint:gosec // G115: ByteSize() returns a non-negative int
	inputSize := uint64(input.ByteSize())
	inputBuf := e.createStorageBuffer(input.Data(), inputSize)

	ex := &executable{
		engine:  e,
		buffers: []*wgpu.Buffer{inputBuf},
		shape:   p.OutputShape(),
	}

	sched := p.Consumer().Schedule()
	var err error
	if sched.ComputeAt {
		err = e.compileFused(p, t, ex, inputBuf, inputSize)
	} else {
		err = e.compileRoot(p, ex, inputBuf, inputSize)
	}
	if err != nil {
		ex.Release()
		return nil, err
	}
	return ex, nil
}

// compileFused emits one shader computing the two-stage stencil inline.
// Tile indices map to workgroups and intra-tile indices to invocations;
// tile edges are clamped to the device's workgroup limits.
func (e *Engine) compileFused(p *pipeline.Pipeline, t pipeline.Target, ex *executable, inputBuf *wgpu.Buffer, inputSize uint64) error {
	if len(p.Stages()) != 2 {
		return fmt.Errorf("webgpu: compute-at fusion requires a two-stage chain, got %d stages", len(p.Stages()))
	}
	if rank := len(p.Input().Shape()); rank != 4 {
		return fmt.Errorf("webgpu: compute-at fusion requires rank-4 pipelines, got rank %d", rank)
	}

	spec := p.Consumer().Schedule().Tiling
	if spec == nil {
		spec = &pipeline.TileSpec{FuseA: 0, FuseB: 1, TileDim: 2, TileW: 32, TileH: 32}
	}
	if spec.FuseA != 0 || spec.FuseB != 1 || spec.TileDim != 2 {
		return fmt.Errorf("webgpu: unsupported tile mapping (fuse %d,%d tile %d)",
			spec.FuseA, spec.FuseB, spec.TileDim)
	}
	tileW, tileH := clampTile(spec.TileW, spec.TileH, t.Limits)

	shape := p.OutputShape()
	//nolint:gosec // G115: shape element counts are non-negative
	outSize := uint64(shape.NumElements() * tensor.Float32.Size())
	outBuf := e.createStorageBuffer(nil, outSize)
	ex.buffers = append(ex.buffers, outBuf)
	ex.outBuf = outBuf
	ex.outSize = outSize

	source := fusedShaderWGSL(p, tileW, tileH)
	dispatch, err := e.buildPass(source, inputBuf, inputSize, outBuf, outSize,
		groups(shape[0]*shape[1], tileW), groups(shape[2], tileH), uint32(shape[3]))
	if err != nil {
		return err
	}
	ex.passes = append(ex.passes, dispatch)
	return nil
}

// compileRoot emits one shader per stage, each materializing a device
// buffer, the last serving as the output.
func (e *Engine) compileRoot(p *pipeline.Pipeline, ex *executable, inputBuf *wgpu.Buffer, inputSize uint64) error {
	src := inputBuf
	srcSize := inputSize

	for i := range p.Stages() {
		shape := p.StageShape(i)
		//nolint:gosec // G115: shape element counts are non-negative
		dstSize := uint64(shape.NumElements() * tensor.Float32.Size())
		dst := e.createStorageBuffer(nil, dstSize)
		ex.buffers = append(ex.buffers, dst)

		source := stageShaderWGSL(p, i)
		dispatch, err := e.buildPass(source, src, srcSize, dst, dstSize,
			groups(shape.NumElements(), stageWorkgroupSize), 1, 1)
		if err != nil {
			return err
		}
		ex.passes = append(ex.passes, dispatch)

		src = dst
		srcSize = dstSize
	}

	ex.outBuf = src
	ex.outSize = srcSize
	return nil
}

// buildPass compiles a shader and wires its two storage bindings.
func (e *Engine) buildPass(source string, src *wgpu.Buffer, srcSize uint64, dst *wgpu.Buffer, dstSize uint64, gx, gy, gz uint32) (pass, error) {
	shader := e.compileShader(source)
	pipe := e.getOrCreatePipeline(source, shader)

	layout := pipe.GetBindGroupLayout(0)
	bindGroup := e.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, src, 0, srcSize),
		wgpu.BufferBindingEntry(1, dst, 0, dstSize),
	})

	return pass{pipeline: pipe, bindGroup: bindGroup, groupsX: gx, groupsY: gy, groupsZ: gz}, nil
}

// Run encodes and submits the compiled passes. Device work may still be
// in flight when Run returns; DeviceSync retires it.
func (ex *executable) Run(out *tensor.RawTensor) error {
	if !out.Shape().Equal(ex.shape) {
		return fmt.Errorf("webgpu: output shape %v does not match pipeline output %v", out.Shape(), ex.shape)
	}
	ex.out = out

	encoder := ex.engine.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	for _, p := range ex.passes {
		computePass.SetPipeline(p.pipeline)
		computePass.SetBindGroup(0, p.bindGroup, nil)
		computePass.DispatchWorkgroups(p.groupsX, p.groupsY, p.groupsZ)
	}
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	ex.engine.queue.Submit(cmdBuffer)
	return nil
}

// DeviceSync blocks until the submitted work has completed by copying the
// output buffer back to the host buffer bound by Run.
func (ex *executable) DeviceSync() error {
	if ex.out == nil {
		return fmt.Errorf("webgpu: DeviceSync before Run")
	}
	data, err := ex.engine.readBuffer(ex.outBuf, ex.outSize)
	if err != nil {
		return err
	}
	copy(ex.out.Data(), data)
	return nil
}

// Release frees the executable's device buffers and bind groups.
func (ex *executable) Release() {
	for _, p := range ex.passes {
		if p.bindGroup != nil {
			p.bindGroup.Release()
		}
	}
	ex.passes = nil
	for _, b := range ex.buffers {
		b.Release()
	}
	ex.buffers = nil
}
