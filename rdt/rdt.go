// Package rdt implements the alternating-bit protocol entities. Entity A
// sends upper-layer messages to entity B, one at a time.
package rdt

import (
	"errors"

	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
)

// ErrBusy is returned when the sender still waits for an acknowledgement.
var ErrBusy = errors.New("data not accepted: waiting for acknowledgement")

// ErrNotImplemented is returned by operations of the unimplemented
// bidirectional transfer.
var ErrNotImplemented = errors.New("bidirectional transfer is not implemented")

// A Channel carries packets to the peer entity.
type Channel interface {
	Send(from sim.Entity, p packet.Packet)
}

// A Deliverer receives messages passed up by an entity.
type Deliverer interface {
	Deliver(entity sim.Entity, m packet.Message)
}

// A Timer starts and stops the timer of an entity.
type Timer interface {
	Start(entity sim.Entity, duration sim.VTimeInSec) error
	Stop(entity sim.Entity) error
}

// An Entity is one end of the protocol.
type Entity interface {
	// Output is called when the upper layer has a message to send.
	Output(m packet.Message) error

	// Input is called when a packet arrives from the channel.
	Input(p packet.Packet)

	// TimerInterrupt is called when the timer of the entity goes off.
	TimerInterrupt()
}

// AckFlag is the acknum of every acknowledgement packet.
const AckFlag = 1

func nextSeq(seq int) int {
	return (seq + 1) % 2
}
