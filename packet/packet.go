// Package packet defines the data units that move between the upper layer,
// the protocol entities and the simulated channel.
package packet

import (
	"bytes"
	"fmt"
)

// PayloadSize is the fixed capacity of a message and of a packet payload.
const PayloadSize = 20

// A Message is one upper-layer data unit.
type Message struct {
	Data [PayloadSize]byte
}

// MakeMessage creates a message that repeats b over the whole payload.
func MakeMessage(b byte) Message {
	m := Message{}
	for i := range m.Data {
		m.Data[i] = b
	}

	return m
}

// String returns the payload up to the first zero byte.
func (m Message) String() string {
	return string(trimPayload(m.Data))
}

// Damage tells which field the channel has corrupted. It is only used for
// tracing and recording. Receivers must detect corruption by checksum.
type Damage int

// Possible kinds of damage.
const (
	DamageNone Damage = iota
	DamagePayload
	DamageSeqNum
	DamageAckNum
)

func (d Damage) String() string {
	switch d {
	case DamageNone:
		return "none"
	case DamagePayload:
		return "payload"
	case DamageSeqNum:
		return "seqnum"
	case DamageAckNum:
		return "acknum"
	default:
		return fmt.Sprintf("damage(%d)", int(d))
	}
}

// A Packet is the transport-layer datagram. It is a value type. Every hand-off
// copies it.
type Packet struct {
	SeqNum   int
	AckNum   int
	Checksum int
	Payload  [PayloadSize]byte
	Damage   Damage
}

// ComputeChecksum sums the header fields and the payload bytes up to the
// first zero byte.
func ComputeChecksum(seqNum, ackNum int, payload [PayloadSize]byte) int {
	sum := seqNum + ackNum
	for _, b := range trimPayload(payload) {
		sum += int(b)
	}

	return sum
}

// Seal recomputes and stores the checksum of the packet.
func (p *Packet) Seal() {
	p.Checksum = ComputeChecksum(p.SeqNum, p.AckNum, p.Payload)
}

// IsCorrupt returns true if the stored checksum does not match the content.
func (p Packet) IsCorrupt() bool {
	return ComputeChecksum(p.SeqNum, p.AckNum, p.Payload) != p.Checksum
}

// Message extracts the payload as a message.
func (p Packet) Message() Message {
	return Message{Data: p.Payload}
}

func (p Packet) String() string {
	return fmt.Sprintf("seq:%d ack:%d checksum:%d |%s|",
		p.SeqNum, p.AckNum, p.Checksum, trimPayload(p.Payload))
}

func trimPayload(payload [PayloadSize]byte) []byte {
	data := payload[:]
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return data[:i]
	}

	return data
}
