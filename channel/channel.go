// Package channel emulates the unreliable link between the two entities.
//
// The channel can lose, corrupt and delay packets, but it never reorders
// packets that travel toward the same entity.
package channel

import (
	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
)

// Delay bounds, in simulated time units.
const (
	MinDelay = 1.0
	MaxDelay = 10.0
)

// DamagedFieldValue is written into a header field that the channel corrupts.
// It is outside the {0, 1} sequence domain.
const DamagedFieldValue = 999999

// DamageMarker is written into the payload byte that the channel corrupts.
const DamageMarker = 'Z'

// Thresholds splitting a corruption among payload, seqnum and acknum.
const (
	payloadDamageThreshold = 0.75
	seqNumDamageThreshold  = 0.875
)

// HookPosPacketSent triggers when a packet enters the channel.
var HookPosPacketSent = &sim.HookPos{Name: "PacketSent"}

// HookPosPacketLost triggers when the channel drops a packet.
var HookPosPacketLost = &sim.HookPos{Name: "PacketLost"}

// HookPosPacketCorrupted triggers when the channel damages a packet.
var HookPosPacketCorrupted = &sim.HookPos{Name: "PacketCorrupted"}

// HookPosArrivalScheduled triggers when a packet arrival is scheduled.
var HookPosArrivalScheduled = &sim.HookPos{Name: "ArrivalScheduled"}

// A Transmission is the hook item describing one packet in the channel.
type Transmission struct {
	From    sim.Entity
	To      sim.Entity
	Packet  packet.Packet
	Arrival sim.VTimeInSec
}

// Stats counts what happened to the packets sent into the channel.
type Stats struct {
	Sent      int
	Lost      int
	Corrupted int
}

// Emulator moves packets between entities through a scheduler.
type Emulator struct {
	*sim.HookableBase

	scheduler sim.EventScheduler
	rng       sim.RandomSource

	lossProbability       float64
	corruptionProbability float64

	lastArrival map[sim.Entity]sim.VTimeInSec
	stats       Stats
}

// Send hands a packet from one entity to the channel. The destination is the
// other entity. The caller's packet is never modified.
func (c *Emulator) Send(from sim.Entity, p packet.Packet) {
	c.stats.Sent++

	now := c.scheduler.CurrentTime()
	trans := Transmission{From: from, To: from.Peer(), Packet: p}
	c.invoke(now, HookPosPacketSent, trans)

	if c.rng.Float64() < c.lossProbability {
		c.stats.Lost++
		c.invoke(now, HookPosPacketLost, trans)

		return
	}

	trans.Arrival = c.arrivalTime(now, trans.To)

	if c.rng.Float64() < c.corruptionProbability {
		c.stats.Corrupted++
		c.damage(&trans.Packet)
		c.invoke(now, HookPosPacketCorrupted, trans)
	}

	c.lastArrival[trans.To] = trans.Arrival
	c.scheduler.Schedule(
		sim.NewArrivalEvent(trans.Arrival, trans.To, trans.Packet))
	c.invoke(now, HookPosArrivalScheduled, trans)
}

func (c *Emulator) arrivalTime(
	now sim.VTimeInSec,
	to sim.Entity,
) sim.VTimeInSec {
	base := now
	if last, ok := c.lastArrival[to]; ok && last > base {
		base = last
	}

	delay := MinDelay + (MaxDelay-MinDelay)*c.rng.Float64()

	return base + sim.VTimeInSec(delay)
}

func (c *Emulator) damage(p *packet.Packet) {
	x := c.rng.Float64()

	switch {
	case x < payloadDamageThreshold:
		p.Payload[0] = DamageMarker
		p.Damage = packet.DamagePayload
	case x < seqNumDamageThreshold:
		p.SeqNum = DamagedFieldValue
		p.Damage = packet.DamageSeqNum
	default:
		p.AckNum = DamagedFieldValue
		p.Damage = packet.DamageAckNum
	}
}

func (c *Emulator) invoke(now sim.VTimeInSec, pos *sim.HookPos, t Transmission) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Now:    now,
		Pos:    pos,
		Item:   t,
	})
}

// Stats returns the counters of the channel.
func (c *Emulator) Stats() Stats {
	return c.stats
}

// LatestArrival returns the latest arrival time scheduled toward an entity.
func (c *Emulator) LatestArrival(to sim.Entity) (sim.VTimeInSec, bool) {
	t, ok := c.lastArrival[to]
	return t, ok
}
