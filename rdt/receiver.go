package rdt

import (
	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/tracing"
)

// InitialLastGoodSeq mirrors the sender's first sequence number 0, so that
// an acknowledgement sent before any delivery reads as a NAK.
const InitialLastGoodSeq = 1

// Verdict is what the receiver decided about an incoming packet.
type Verdict int

// Receiver verdicts.
const (
	Delivered Verdict = iota
	RejectedAsCorrupt
	RejectedAsDuplicate
)

func (v Verdict) String() string {
	switch v {
	case Delivered:
		return "delivered"
	case RejectedAsCorrupt:
		return "rejected-as-corrupt"
	default:
		return "rejected-as-duplicate"
	}
}

// ReceiverStats counts the verdicts of the receiver.
type ReceiverStats struct {
	Delivered  int
	Corrupt    int
	Duplicates int
}

// Receiver is entity B.
type Receiver struct {
	channel   Channel
	deliverer Deliverer
	tracer    *tracing.Tracer

	lastGoodSeq int
	lastVerdict Verdict
	stats       ReceiverStats
}

// NewReceiver creates entity B.
func NewReceiver(
	channel Channel,
	deliverer Deliverer,
	tracer *tracing.Tracer,
) *Receiver {
	return &Receiver{
		channel:     channel,
		deliverer:   deliverer,
		tracer:      tracer,
		lastGoodSeq: InitialLastGoodSeq,
	}
}

// LastGoodSeq returns the sequence number of the last delivered packet.
func (r *Receiver) LastGoodSeq() int {
	return r.lastGoodSeq
}

// LastVerdict returns the decision made on the most recent packet.
func (r *Receiver) LastVerdict() Verdict {
	return r.lastVerdict
}

// Stats returns the verdict counters.
func (r *Receiver) Stats() ReceiverStats {
	return r.stats
}

// Output would send data from B to A.
func (r *Receiver) Output(_ packet.Message) error {
	return ErrNotImplemented
}

// Input delivers a new, intact packet upward. Whatever the verdict, it
// answers with an acknowledgement that names the last good sequence number.
func (r *Receiver) Input(p packet.Packet) {
	r.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Begin B_input")
	r.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: %s", p)

	switch {
	case p.IsCorrupt():
		r.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Packet is corrupt!")
		r.lastVerdict = RejectedAsCorrupt
		r.stats.Corrupt++
	case p.SeqNum == r.lastGoodSeq:
		r.tracer.Logf(tracing.LevelEvent,
			"\t\tDEBUG: Received duplicate data packet")
		r.lastVerdict = RejectedAsDuplicate
		r.stats.Duplicates++
	default:
		r.tracer.Logf(tracing.LevelEvent,
			"\t\tDEBUG: Packet is NOT corrupt. Sending msg to B's layer 5")
		r.deliverer.Deliver(sim.EntityB, p.Message())
		r.lastGoodSeq = p.SeqNum
		r.lastVerdict = Delivered
		r.stats.Delivered++
	}

	ack := r.makeAck()
	r.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: ACK = %s", ack)
	r.tracer.Logf(tracing.LevelEvent,
		"\t\tDEBUG: Sending ACK back thru layer 3 to A")
	r.channel.Send(sim.EntityB, ack)
}

// TimerInterrupt does nothing. B never starts a timer.
func (r *Receiver) TimerInterrupt() {
}

func (r *Receiver) makeAck() packet.Packet {
	ack := packet.Packet{
		SeqNum: r.lastGoodSeq,
		AckNum: AckFlag,
	}
	ack.Seal()

	return ack
}
