package sim

import (
	"fmt"

	"github.com/sarchlab/rdtsim/packet"
)

// VTimeInSec defines the time in the simulated space.
type VTimeInSec float64

// An Entity names one end of the simulated link.
type Entity int

// The two entities. A sends, B receives.
const (
	EntityA Entity = iota
	EntityB
)

// Peer returns the entity at the other end of the link.
func (e Entity) Peer() Entity {
	if e == EntityA {
		return EntityB
	}

	return EntityA
}

func (e Entity) String() string {
	switch e {
	case EntityA:
		return "A"
	case EntityB:
		return "B"
	default:
		return fmt.Sprintf("entity(%d)", int(e))
	}
}

// EventKind tells what happens when an event is dispatched.
type EventKind int

// Event kinds.
const (
	TimerInterrupt EventKind = iota
	MessageReady
	PacketArrival
)

func (k EventKind) String() string {
	switch k {
	case TimerInterrupt:
		return "timerinterrupt"
	case MessageReady:
		return "fromlayer5"
	case PacketArrival:
		return "fromlayer3"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// An Event is something going to happen to an entity in the future.
//
// Events are plain values. Once scheduled, an event is never modified. It can
// only be removed by the scheduler, either by popping or by cancelling.
type Event struct {
	ID     string
	Time   VTimeInSec
	Kind   EventKind
	Entity Entity

	// Packet is only set for PacketArrival events. It points to a private
	// copy owned by the event.
	Packet *packet.Packet
}

// NewEvent creates an event without a packet.
func NewEvent(t VTimeInSec, kind EventKind, entity Entity) Event {
	return Event{
		Time:   t,
		Kind:   kind,
		Entity: entity,
	}
}

// NewArrivalEvent creates a PacketArrival event that carries a copy of p.
func NewArrivalEvent(t VTimeInSec, entity Entity, p packet.Packet) Event {
	pkt := p

	return Event{
		Time:   t,
		Kind:   PacketArrival,
		Entity: entity,
		Packet: &pkt,
	}
}
