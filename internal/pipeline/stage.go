// Package pipeline defines the declarative stage graph, scheduling
// directives, and target descriptors consumed by the compute engines.
//
// A Pipeline is a linear chain of averaging-stencil stages over a dense
// input tensor. Stages only describe the computation; engines compile a
// pipeline for a target and return an Executable that realizes it into an
// output buffer.
package pipeline

// Range describes an estimated iteration range for one dimension.
type Range struct {
	Min    int
	Extent int
}

// Stage is a named averaging stencil: taps consecutive samples along one
// dimension, unit stride, scaled by 1/taps. A stage reads the previous
// stage in the chain, or the pipeline input if it is the first stage.
type Stage struct {
	name      string
	along     int
	taps      int
	sched     Schedule
	estimates []Range
}

// NewAverageStage creates a stencil stage averaging taps samples along
// the given dimension index.
func NewAverageStage(name string, along, taps int) *Stage {
	return &Stage{
		name:  name,
		along: along,
		taps:  taps,
	}
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// Along returns the dimension index the stencil slides over.
func (s *Stage) Along() int { return s.along }

// Taps returns the number of samples averaged.
func (s *Stage) Taps() int { return s.taps }

// Scale returns the multiplier applied to the stencil sum.
func (s *Stage) Scale() float32 { return 1.0 / float32(s.taps) }

// SetSchedule attaches scheduling directives to the stage.
func (s *Stage) SetSchedule(sched Schedule) { s.sched = sched }

// Schedule returns the stage's scheduling directives.
func (s *Stage) Schedule() Schedule { return s.sched }

// SetEstimates attaches estimated iteration ranges for every dimension of
// the stage's output. Autoschedulers require estimates on the consumer.
func (s *Stage) SetEstimates(ranges ...Range) {
	s.estimates = append([]Range(nil), ranges...)
}

// Estimates returns the estimated iteration ranges, or nil if unset.
func (s *Stage) Estimates() []Range { return s.estimates }
