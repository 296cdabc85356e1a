package channel

import (
	"fmt"

	"github.com/sarchlab/rdtsim/sim"
)

// Builder can build channel emulators.
type Builder struct {
	scheduler             sim.EventScheduler
	rng                   sim.RandomSource
	lossProbability       float64
	corruptionProbability float64
}

// MakeBuilder creates a new Builder with a perfect channel.
func MakeBuilder() Builder {
	return Builder{}
}

// WithScheduler sets the scheduler that receives the arrival events.
func (b Builder) WithScheduler(s sim.EventScheduler) Builder {
	b.scheduler = s
	return b
}

// WithRandomSource sets the source of all random draws.
func (b Builder) WithRandomSource(rng sim.RandomSource) Builder {
	b.rng = rng
	return b
}

// WithLossProbability sets the probability that a packet is dropped.
func (b Builder) WithLossProbability(p float64) Builder {
	b.lossProbability = p
	return b
}

// WithCorruptionProbability sets the probability that a packet is damaged.
func (b Builder) WithCorruptionProbability(p float64) Builder {
	b.corruptionProbability = p
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.scheduler == nil {
		panic("channel: scheduler is not set")
	}

	if b.rng == nil {
		panic("channel: random source is not set")
	}

	if b.lossProbability < 0 || b.lossProbability > 1 {
		panic(fmt.Sprintf(
			"channel: loss probability %f out of [0, 1]", b.lossProbability))
	}

	if b.corruptionProbability < 0 || b.corruptionProbability > 1 {
		panic(fmt.Sprintf(
			"channel: corruption probability %f out of [0, 1]",
			b.corruptionProbability))
	}
}

// Build creates the emulator.
func (b Builder) Build() *Emulator {
	b.parametersMustBeValid()

	return &Emulator{
		HookableBase:          sim.NewHookableBase(),
		scheduler:             b.scheduler,
		rng:                   b.rng,
		lossProbability:       b.lossProbability,
		corruptionProbability: b.corruptionProbability,
		lastArrival:           make(map[sim.Entity]sim.VTimeInSec),
	}
}
