package pipeline

import (
	"fmt"

	"github.com/tessel-ml/tessel/internal/tensor"
)

// Pipeline is a linear chain of stencil stages over an input tensor.
// The last stage is the consumer from which scheduling and compilation
// are driven. The input is treated as immutable once attached.
type Pipeline struct {
	input  *tensor.RawTensor
	stages []*Stage
}

// New validates and builds a pipeline from an input tensor and an ordered
// stage chain. Each stage reads the previous stage's output; the first
// stage reads the input.
func New(input *tensor.RawTensor, stages ...*Stage) (*Pipeline, error) {
	if input == nil {
		return nil, fmt.Errorf("pipeline: nil input tensor")
	}
	if input.DType() != tensor.Float32 {
		return nil, fmt.Errorf("pipeline: only float32 inputs are supported, got %s", input.DType())
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline: at least one stage is required")
	}

	shape := input.Shape().Clone()
	for i, s := range stages {
		if s == nil {
			return nil, fmt.Errorf("pipeline: stage %d is nil", i)
		}
		if s.taps < 1 {
			return nil, fmt.Errorf("pipeline: stage %q has %d taps (must be >= 1)", s.name, s.taps)
		}
		if s.along < 0 || s.along >= len(shape) {
			return nil, fmt.Errorf("pipeline: stage %q stencil dimension %d out of range for rank %d",
				s.name, s.along, len(shape))
		}
		shape[s.along] -= s.taps - 1
		if shape[s.along] <= 0 {
			return nil, fmt.Errorf("pipeline: stage %q shrinks dimension %d to %d",
				s.name, s.along, shape[s.along])
		}
	}

	return &Pipeline{input: input, stages: stages}, nil
}

// Input returns the pipeline's input tensor.
func (p *Pipeline) Input() *tensor.RawTensor { return p.input }

// Stages returns the ordered stage chain.
func (p *Pipeline) Stages() []*Stage { return p.stages }

// Consumer returns the final stage.
func (p *Pipeline) Consumer() *Stage { return p.stages[len(p.stages)-1] }

// StageShape returns the output shape of stage i: the input shape with
// every stencil up to and including stage i applied.
func (p *Pipeline) StageShape(i int) tensor.Shape {
	shape := p.input.Shape().Clone()
	for _, s := range p.stages[:i+1] {
		shape[s.along] -= s.taps - 1
	}
	return shape
}

// OutputShape returns the consumer's output shape.
func (p *Pipeline) OutputShape() tensor.Shape {
	return p.StageShape(len(p.stages) - 1)
}

// NewOutputBuffer allocates a zeroed buffer sized to the output shape.
func (p *Pipeline) NewOutputBuffer() (*tensor.RawTensor, error) {
	return tensor.NewRaw(p.OutputShape(), tensor.Float32)
}
