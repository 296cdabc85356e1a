// Package traffic produces the upper-layer messages that feed the sender.
package traffic

import (
	"fmt"

	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/tracing"
)

// Generator schedules MessageReady events at random intervals.
type Generator struct {
	scheduler sim.EventScheduler
	rng       sim.RandomSource
	tracer    *tracing.Tracer

	meanInterarrival float64
}

// NewGenerator creates a generator whose intervals are uniform on
// [0, 2*meanInterarrival).
func NewGenerator(
	scheduler sim.EventScheduler,
	rng sim.RandomSource,
	meanInterarrival float64,
	tracer *tracing.Tracer,
) *Generator {
	if meanInterarrival <= 0 {
		panic(fmt.Sprintf(
			"traffic: mean interarrival must be positive, got %f",
			meanInterarrival))
	}

	return &Generator{
		scheduler:        scheduler,
		rng:              rng,
		tracer:           tracer,
		meanInterarrival: meanInterarrival,
	}
}

// NextInterval draws the time until the next message.
func (g *Generator) NextInterval() sim.VTimeInSec {
	return sim.VTimeInSec(g.meanInterarrival * g.rng.Float64() * 2)
}

// ScheduleNext schedules the next message for the entity chosen by the
// generator. Only A originates data.
func (g *Generator) ScheduleNext() {
	g.Schedule(sim.EntityA)
}

// Schedule schedules the next message for the given entity.
func (g *Generator) Schedule(entity sim.Entity) {
	g.tracer.Logf(tracing.LevelPacket,
		"          GENERATE NEXT ARRIVAL: creating new arrival")

	t := g.scheduler.CurrentTime() + g.NextInterval()
	g.scheduler.Schedule(sim.NewEvent(t, sim.MessageReady, entity))
}

// MessageFor returns the message that carries the given sequence index. The
// payload is a single letter from 'a' to 'z' repeated.
func MessageFor(index int) packet.Message {
	return packet.MakeMessage(byte('a' + index%26))
}
