package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownAutoscheduler is returned when loading an unregistered
// autoscheduler name.
var ErrUnknownAutoscheduler = errors.New("pipeline: unknown autoscheduler")

// Autoscheduler derives schedules for a pipeline's stages from their
// estimated iteration ranges and the target's device limits.
type Autoscheduler func(p *Pipeline, t Target) error

var (
	autoschedMu sync.RWMutex
	autoscheds  = make(map[string]Autoscheduler)
)

// RegisterAutoscheduler registers a named autoscheduling algorithm.
// Registering a duplicate name panics; names are package identities.
func RegisterAutoscheduler(name string, a Autoscheduler) {
	autoschedMu.Lock()
	defer autoschedMu.Unlock()
	if _, exists := autoscheds[name]; exists {
		panic(fmt.Sprintf("pipeline: autoscheduler %q registered twice", name))
	}
	autoscheds[name] = a
}

// LoadAutoscheduler resolves a registered autoscheduler by name.
func LoadAutoscheduler(name string) (Autoscheduler, error) {
	autoschedMu.RLock()
	defer autoschedMu.RUnlock()
	a, ok := autoscheds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownAutoscheduler, name, Autoschedulers())
	}
	return a, nil
}

// Autoschedulers returns the sorted names of all registered algorithms.
func Autoschedulers() []string {
	autoschedMu.RLock()
	defer autoschedMu.RUnlock()
	names := make([]string, 0, len(autoscheds))
	for name := range autoscheds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Autoschedule invokes the named autoscheduler against the target. The
// consumer stage must carry estimates for every output dimension.
func (p *Pipeline) Autoschedule(name string, t Target) error {
	a, err := LoadAutoscheduler(name)
	if err != nil {
		return err
	}

	consumer := p.Consumer()
	if got, want := len(consumer.Estimates()), len(p.OutputShape()); got != want {
		return fmt.Errorf("pipeline: consumer %q has estimates for %d of %d dimensions",
			consumer.Name(), got, want)
	}
	return a(p, t)
}

func init() {
	RegisterAutoscheduler("greedy", greedyAutoschedule)
}

// greedyAutoschedule picks the largest square tile whose thread count
// fits the device's workgroup limits, fuses the two outermost dimensions,
// and computes every producer at the consumer's tile granularity.
func greedyAutoschedule(p *Pipeline, t Target) error {
	consumer := p.Consumer()
	est := consumer.Estimates()
	if len(est) < 3 {
		return fmt.Errorf("pipeline: greedy autoscheduler needs rank >= 3, got %d", len(est))
	}

	maxInvocations := t.Limits.MaxInvocationsPerWorkgroup
	if maxInvocations == 0 {
		maxInvocations = 256 // conservative WebGPU default limit
	}

	tile := 1
	for _, c := range []int{32, 16, 8, 4, 2} {
		if uint32(c*c) <= maxInvocations && withinExtent(est, c) {
			tile = c
			break
		}
	}

	consumer.SetSchedule(Schedule{
		Tiling: &TileSpec{
			FuseA:   0,
			FuseB:   1,
			TileDim: 2,
			TileW:   tile,
			TileH:   tile,
		},
		ComputeAt: true,
	})
	return nil
}

// withinExtent reports whether a candidate tile edge does not exceed the
// fused and tiled estimated extents.
func withinExtent(est []Range, tile int) bool {
	fused := est[0].Extent * est[1].Extent
	return tile <= fused && tile <= est[2].Extent
}
