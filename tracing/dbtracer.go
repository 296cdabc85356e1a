package tracing

import (
	"fmt"

	"github.com/sarchlab/rdtsim/channel"
	"github.com/sarchlab/rdtsim/datarecording"
	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
)

// Table names used by the DBTracer.
const (
	EventTable        = "event"
	TransmissionTable = "transmission"
	DeliveryTable     = "delivery"
)

type eventTableEntry struct {
	ID       string
	Time     float64
	Kind     string
	Entity   string
	SeqNum   int
	AckNum   int
	Checksum int
	Corrupt  bool
}

type transmissionTableEntry struct {
	Time        float64
	Source      string
	Destination string
	Outcome     string
	Arrival     float64
	SeqNum      int
	AckNum      int
	Checksum    int
	Damage      string
}

type deliveryTableEntry struct {
	Time    float64
	Entity  string
	Payload string
}

// DBTracer stores events, channel transmissions and deliveries into a data
// recorder.
type DBTracer struct {
	backend datarecording.DataRecorder
}

// NewDBTracer creates the tables and returns a tracer that fills them.
func NewDBTracer(backend datarecording.DataRecorder) (*DBTracer, error) {
	t := &DBTracer{backend: backend}

	tables := []struct {
		name   string
		sample any
	}{
		{EventTable, eventTableEntry{}},
		{TransmissionTable, transmissionTableEntry{}},
		{DeliveryTable, deliveryTableEntry{}},
	}

	for _, tbl := range tables {
		if err := backend.CreateTable(tbl.name, tbl.sample); err != nil {
			return nil, fmt.Errorf("creating table %s: %w", tbl.name, err)
		}
	}

	return t, nil
}

// Func records events and channel transmissions.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case sim.Event:
		if ctx.Pos == sim.HookPosBeforeEvent {
			t.recordEvent(item)
		}
	case channel.Transmission:
		t.recordTransmission(ctx, item)
	}
}

func (t *DBTracer) recordEvent(evt sim.Event) {
	entry := eventTableEntry{
		ID:     evt.ID,
		Time:   float64(evt.Time),
		Kind:   evt.Kind.String(),
		Entity: evt.Entity.String(),
	}

	if evt.Packet != nil {
		entry.SeqNum = evt.Packet.SeqNum
		entry.AckNum = evt.Packet.AckNum
		entry.Checksum = evt.Packet.Checksum
		entry.Corrupt = evt.Packet.IsCorrupt()
	}

	t.mustInsert(EventTable, entry)
}

func (t *DBTracer) recordTransmission(
	ctx sim.HookCtx,
	trans channel.Transmission,
) {
	var outcome string

	switch ctx.Pos {
	case channel.HookPosPacketLost:
		outcome = "lost"
	case channel.HookPosArrivalScheduled:
		outcome = "scheduled"
		if trans.Packet.Damage != packet.DamageNone {
			outcome = "corrupted"
		}
	default:
		return
	}

	t.mustInsert(TransmissionTable, transmissionTableEntry{
		Time:     float64(ctx.Now),
		Source:      trans.From.String(),
		Destination: trans.To.String(),
		Outcome:     outcome,
		Arrival:     float64(trans.Arrival),
		SeqNum:      trans.Packet.SeqNum,
		AckNum:      trans.Packet.AckNum,
		Checksum:    trans.Packet.Checksum,
		Damage:      trans.Packet.Damage.String(),
	})
}

// RecordDelivery stores a message delivered to the upper layer.
func (t *DBTracer) RecordDelivery(
	now sim.VTimeInSec,
	entity sim.Entity,
	m packet.Message,
) {
	t.mustInsert(DeliveryTable, deliveryTableEntry{
		Time:    float64(now),
		Entity:  entity.String(),
		Payload: m.String(),
	})
}

func (t *DBTracer) mustInsert(tableName string, entry any) {
	if err := t.backend.InsertData(tableName, entry); err != nil {
		panic(fmt.Sprintf("tracing: cannot record into %s: %v", tableName, err))
	}
}
