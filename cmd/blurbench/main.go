// Command blurbench benchmarks the two-stage separable box-blur pipeline
// on the GPU, using either the hand-written tiling schedule (no
// arguments) or a named autoscheduling algorithm (one argument).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tessel-ml/tessel/engine/webgpu"
	"github.com/tessel-ml/tessel/internal/bench"
	"github.com/tessel-ml/tessel/internal/blur"
	"github.com/tessel-ml/tessel/internal/config"
	"github.com/tessel-ml/tessel/pipeline"
	"github.com/tessel-ml/tessel/tensor"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	scheduler := ""
	switch len(args) {
	case 0:
		fmt.Fprintln(stdout, "Running performance test for blur with manual schedule.")
	case 1:
		scheduler = args[0]
		fmt.Fprintf(stdout, "Running performance test for blur with autoscheduler: %s.\n", scheduler)
		if _, err := pipeline.LoadAutoscheduler(scheduler); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	default:
		fmt.Fprintln(stderr, "Usage: blurbench [autoscheduler]")
		return 1
	}

	cfg, err := config.Load(os.Getenv(config.EnvConfig))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg = config.FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "Generating input with dimensions: batch: %d, height: %d, width: %d, channels: %d\n",
		cfg.Batch, cfg.Height, cfg.Width, cfg.Channels)

	input, err := tensor.Rand(tensor.Shape{cfg.Batch, cfg.Channels, cfg.Height, cfg.Width})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	p, err := blur.New(input)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	engine, err := webgpu.New()
	if err != nil {
		fmt.Fprintln(stderr, "Requested GPU(s) are not supported. (Do you have the proper hardware and/or driver installed?)")
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer engine.Release()

	target := pipeline.FindGPUTarget(engine)
	fmt.Fprintf(stdout, "Target: %s\n", target)

	if err := blur.Schedule(p, target, scheduler); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	exec, err := engine.Compile(p, target)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer exec.Release()

	out, err := p.NewOutputBuffer()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintln(stdout, "Testing performance on GPU:")
	res, err := bench.Measure(exec, out, cfg.Runs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "%d runs in total\n", res.Runs)
	fmt.Fprintf(stdout, "Average: %1.4f milliseconds\n", res.AverageMilliseconds())
	fmt.Fprintf(stdout, "Best: %1.4f milliseconds\n", res.BestMilliseconds())

	if cfg.LogDir != "" {
		rec := bench.NewRecord(target.String(), engine.Name(), scheduler, res)
		path, err := bench.WriteLog(cfg.LogDir, rec)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "Session log: %s\n", path)
	}

	return 0
}
