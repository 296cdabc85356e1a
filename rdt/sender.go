package rdt

import (
	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/tracing"
)

// State is the state of the sender.
type State int

// Sender states.
const (
	Ready State = iota
	Waiting
)

func (s State) String() string {
	if s == Waiting {
		return "WAITING"
	}

	return "READY"
}

// Sender is entity A. It holds at most one unacknowledged packet.
type Sender struct {
	channel Channel
	timer   Timer
	tracer  *tracing.Tracer

	// A zero timeout leaves retransmission to the content of the
	// acknowledgements.
	timeout sim.VTimeInSec

	state State
	pkt   packet.Packet
	sends int
}

// NewSender creates entity A in the Ready state. The first packet it sends
// carries sequence number 0.
func NewSender(channel Channel, tracer *tracing.Tracer) *Sender {
	return &Sender{
		channel: channel,
		tracer:  tracer,
		state:   Ready,
		pkt:     packet.Packet{SeqNum: 1},
	}
}

// WithRetransmitTimer makes the sender retransmit when its timer goes off.
func (s *Sender) WithRetransmitTimer(t Timer, timeout sim.VTimeInSec) *Sender {
	s.timer = t
	s.timeout = timeout

	return s
}

// State returns the current state.
func (s *Sender) State() State {
	return s.state
}

// LastSent returns the packet that was sent last.
func (s *Sender) LastSent() packet.Packet {
	return s.pkt
}

// Sends returns how many times a packet was handed to the channel.
func (s *Sender) Sends() int {
	return s.sends
}

// Output builds a packet from the message and sends it, unless a previous
// packet is still unacknowledged.
func (s *Sender) Output(m packet.Message) error {
	s.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Begin A_output(%s)", m)

	if s.state == Waiting {
		s.tracer.Logf(tracing.LevelEvent,
			"\t\tDEBUG: A's state is WAITING; data refused")
		return ErrBusy
	}

	s.pkt.SeqNum = nextSeq(s.pkt.SeqNum)
	s.pkt.AckNum = 0
	s.pkt.Payload = m.Data
	s.pkt.Damage = packet.DamageNone
	s.pkt.Seal()

	s.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: A_pkt = %s", s.pkt)

	s.send()
	s.startTimer()

	s.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Setting A's state to WAITING")
	s.state = Waiting

	return nil
}

// Input handles an acknowledgement from B. A corrupt packet or a packet
// naming another sequence number makes A resend its packet.
func (s *Sender) Input(p packet.Packet) {
	s.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Begin A_input")
	s.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: %s", p)

	if p.IsCorrupt() {
		s.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: ACK or NAK is corrupt!")
		s.resend()

		return
	}

	if p.SeqNum != s.pkt.SeqNum {
		s.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: Received NAK!")
		s.resend()

		return
	}

	s.tracer.Logf(tracing.LevelPacket, "\t\tDEBUG: Received ACK!")

	if s.state == Waiting {
		s.stopTimer()
	}

	s.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Setting A's state to READY")
	s.state = Ready
}

// TimerInterrupt resends the held packet if a retransmit timer is
// configured. Otherwise it does nothing.
func (s *Sender) TimerInterrupt() {
	if s.timer == nil || s.state != Waiting {
		return
	}

	s.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: A's timer expired")
	s.send()
	s.startTimer()
}

func (s *Sender) resend() {
	s.tracer.Logf(tracing.LevelEvent, "\t\tDEBUG: Re-sending A_pkt to layer 3")
	s.send()
}

func (s *Sender) send() {
	s.sends++
	s.channel.Send(sim.EntityA, s.pkt)
}

func (s *Sender) startTimer() {
	if s.timer == nil {
		return
	}

	_ = s.timer.Start(sim.EntityA, s.timeout)
}

func (s *Sender) stopTimer() {
	if s.timer == nil {
		return
	}

	_ = s.timer.Stop(sim.EntityA)
}
