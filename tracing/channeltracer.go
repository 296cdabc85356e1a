package tracing

import (
	"github.com/sarchlab/rdtsim/channel"
	"github.com/sarchlab/rdtsim/sim"
)

// ChannelTracer is a hook that prints what the channel does to packets.
type ChannelTracer struct {
	tracer *Tracer
}

// NewChannelTracer returns a new ChannelTracer that writes with the tracer.
func NewChannelTracer(tracer *Tracer) *ChannelTracer {
	return &ChannelTracer{tracer: tracer}
}

// Func prints the channel notice that matches the hook position.
func (h *ChannelTracer) Func(ctx sim.HookCtx) {
	t, ok := ctx.Item.(channel.Transmission)
	if !ok {
		return
	}

	switch ctx.Pos {
	case channel.HookPosPacketSent:
		h.tracer.Logf(LevelPacket, "          TOLAYER3: %s", t.Packet)
	case channel.HookPosPacketLost:
		h.tracer.Logf(LevelNotice, "          TOLAYER3: packet being lost")
	case channel.HookPosPacketCorrupted:
		h.tracer.Logf(LevelNotice,
			"          TOLAYER3: packet being corrupted (%s)", t.Packet.Damage)
	case channel.HookPosArrivalScheduled:
		h.tracer.Logf(LevelPacket,
			"          TOLAYER3: scheduling arrival on other side at %f",
			t.Arrival)
	}
}
