package tracing

import (
	"github.com/sarchlab/rdtsim/sim"
)

// EventTracer is a hook that prints a summary line for every dispatched event.
type EventTracer struct {
	tracer *Tracer
}

// NewEventTracer returns a new EventTracer that writes with the tracer.
func NewEventTracer(tracer *Tracer) *EventTracer {
	return &EventTracer{tracer: tracer}
}

// Func writes the event information.
func (h *EventTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(sim.Event)
	if !ok {
		return
	}

	h.tracer.Logf(LevelEvent, "\nEVENT time: %f,  type: %d, %s  entity: %d",
		evt.Time, int(evt.Kind), evt.Kind, int(evt.Entity))

	if evt.Packet != nil {
		h.tracer.Logf(LevelPacket, "          packet: %s", evt.Packet)
	}
}
