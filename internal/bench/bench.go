// Package bench implements the timing harness: one untimed warm-up run,
// then repeated executions with a device sync after each, tracking
// cumulative and best per-iteration latency.
package bench

import (
	"fmt"
	"time"

	"github.com/tessel-ml/tessel/internal/pipeline"
	"github.com/tessel-ml/tessel/internal/tensor"
)

// DefaultRuns is the default number of timed iterations.
const DefaultRuns = 100

// Result summarizes a measurement.
type Result struct {
	Runs    int
	Total   time.Duration
	Average time.Duration
	Best    time.Duration
}

// AverageMilliseconds returns the mean per-iteration latency in ms.
func (r Result) AverageMilliseconds() float64 {
	return float64(r.Average) / float64(time.Millisecond)
}

// BestMilliseconds returns the minimum per-iteration latency in ms.
func (r Result) BestMilliseconds() float64 {
	return float64(r.Best) / float64(time.Millisecond)
}

// Measure executes the compiled pipeline once untimed to absorb
// first-call and device warm-up cost, then runs timed iterations. Each
// iteration's clock stops only after DeviceSync returns, so asynchronous
// device work is fully retired before the sample is taken.
func Measure(exec pipeline.Executable, out *tensor.RawTensor, runs int) (Result, error) {
	if runs < 1 {
		return Result{}, fmt.Errorf("bench: runs must be >= 1, got %d", runs)
	}

	if err := realize(exec, out); err != nil {
		return Result{}, fmt.Errorf("bench: warm-up run: %w", err)
	}

	var total, best time.Duration
	for i := 0; i < runs; i++ {
		start := time.Now()
		if err := realize(exec, out); err != nil {
			return Result{}, fmt.Errorf("bench: run %d: %w", i, err)
		}
		elapsed := time.Since(start)

		if i == 0 || elapsed < best {
			best = elapsed
		}
		total += elapsed
	}

	return Result{
		Runs:    runs,
		Total:   total,
		Average: total / time.Duration(runs),
		Best:    best,
	}, nil
}

func realize(exec pipeline.Executable, out *tensor.RawTensor) error {
	if err := exec.Run(out); err != nil {
		return err
	}
	return exec.DeviceSync()
}
