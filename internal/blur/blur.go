// Package blur builds the fixed two-stage separable box-blur pipeline
// and its schedules: a vertical 3-tap averaging producer over the input
// and a horizontal 3-tap averaging consumer over the producer, defined on
// (batch, channel, x, y) tensors.
package blur

import (
	"fmt"

	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/internal/tensor"
)

// Dimension indices of the (batch, channel, x, y) layout.
const (
	DimBatch   = 0
	DimChannel = 1
	DimX       = 2
	DimY       = 3
)

// taps is the stencil width of each blur pass.
const taps = 3

// Manual tile edge sizes for the GPU block/thread mapping.
const (
	tileWidth  = 32
	tileHeight = 32
)

// New builds the blur pipeline over a 4-D float32 input. The output
// shape is the input shape with x and y each reduced by 2.
func New(input *tensor.RawTensor) (*pipeline.Pipeline, error) {
	if rank := len(input.Shape()); rank != 4 {
		return nil, fmt.Errorf("blur: input must be rank 4 (batch, channel, x, y), got rank %d", rank)
	}
	producer := pipeline.NewAverageStage("producer", DimX, taps)
	consumer := pipeline.NewAverageStage("consumer", DimY, taps)
	return pipeline.New(input, producer, consumer)
}

// Schedule prepares the pipeline for the resolved target, selecting the
// manual path when scheduler is empty and the named autoscheduler
// otherwise. Targets without a GPU feature are rejected; the caller must
// not benchmark an unscheduled pipeline.
func Schedule(p *pipeline.Pipeline, t pipeline.Target, scheduler string) error {
	if !t.HasGPUFeature() {
		return pipeline.ErrUnsupportedTarget
	}

	if scheduler == "" {
		return applyManualSchedule(p, t)
	}

	in := p.Input().Shape()
	p.Consumer().SetEstimates(
		pipeline.Range{Min: 0, Extent: in[DimBatch]},
		pipeline.Range{Min: 0, Extent: in[DimChannel]},
		pipeline.Range{Min: 0, Extent: in[DimX]},
		pipeline.Range{Min: 0, Extent: in[DimY]},
	)
	return p.Autoschedule(scheduler, t)
}

// applyManualSchedule attaches the hand-written GPU schedule. Every
// backend kind takes an explicit branch: the tiled mapping fuses batch
// and channel, tiles the fused index and x by 32x32, maps tile indices
// to GPU blocks and intra-tile indices to GPU threads, and computes the
// producer at the consumer's inner tile granularity with storage chosen
// by the engine.
func applyManualSchedule(p *pipeline.Pipeline, t pipeline.Target) error {
	switch t.Feature {
	case pipeline.FeatureMetal, pipeline.FeatureVulkan, pipeline.FeatureD3D12:
		p.Consumer().SetSchedule(pipeline.Schedule{
			Tiling: &pipeline.TileSpec{
				FuseA:   DimBatch,
				FuseB:   DimChannel,
				TileDim: DimX,
				TileW:   tileWidth,
				TileH:   tileHeight,
			},
			ComputeAt: true,
		})
		return nil
	case pipeline.FeatureOpenGL:
		// Intentionally left on the engine's default schedule: the tiled
		// mapping has not been validated on GL compute.
		return nil
	default:
		return pipeline.ErrUnsupportedTarget
	}
}

// Reference computes the blur with straightforward nested loops:
// out[n,c,x,y] = (1/3) * sum_j (1/3) * sum_i input[n,c,x+i,y+j].
func Reference(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	shape := input.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("blur: input must be rank 4, got rank %d", len(shape))
	}
	outShape := tensor.Shape{shape[0], shape[1], shape[2] - taps + 1, shape[3] - taps + 1}
	out, err := tensor.NewRaw(outShape, tensor.Float32)
	if err != nil {
		return nil, err
	}

	for n := 0; n < outShape[0]; n++ {
		for c := 0; c < outShape[1]; c++ {
			for x := 0; x < outShape[2]; x++ {
				for y := 0; y < outShape[3]; y++ {
					var sum float32
					for j := 0; j < taps; j++ {
						var inner float32
						for i := 0; i < taps; i++ {
							inner += input.At(n, c, x+i, y+j)
						}
						sum += inner / taps
					}
					out.SetAt(sum/taps, n, c, x, y)
				}
			}
		}
	}
	return out, nil
}
