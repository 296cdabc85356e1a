package simulation

import (
	"github.com/sarchlab/rdtsim/packet"
)

// inspectedComponent exposes part of the simulation state to the monitor.
type inspectedComponent struct {
	name     string
	snapshot func() any
}

func (c inspectedComponent) Name() string {
	return c.name
}

func (c inspectedComponent) Snapshot() any {
	return c.snapshot()
}

type senderSnapshot struct {
	State    string
	Sends    int
	LastSent packet.Packet
}

type receiverSnapshot struct {
	LastGoodSeq int
	LastVerdict string
	Delivered   int
	Corrupt     int
	Duplicates  int
}

type channelSnapshot struct {
	Sent      int
	Lost      int
	Corrupted int
	Pending   int
}

func (s *Simulation) monitoredComponents() []inspectedComponent {
	return []inspectedComponent{
		{name: "Simulation", snapshot: func() any { return s.Stats() }},
		{name: "A", snapshot: s.senderSnapshot},
		{name: "B", snapshot: s.receiverSnapshot},
		{name: "Channel", snapshot: s.channelSnapshot},
	}
}

func (s *Simulation) senderSnapshot() any {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return senderSnapshot{
		State:    s.sender.State().String(),
		Sends:    s.sender.Sends(),
		LastSent: s.sender.LastSent(),
	}
}

func (s *Simulation) receiverSnapshot() any {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	stats := s.receiver.Stats()

	return receiverSnapshot{
		LastGoodSeq: s.receiver.LastGoodSeq(),
		LastVerdict: s.receiver.LastVerdict().String(),
		Delivered:   stats.Delivered,
		Corrupt:     stats.Corrupt,
		Duplicates:  stats.Duplicates,
	}
}

func (s *Simulation) channelSnapshot() any {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	stats := s.channel.Stats()

	return channelSnapshot{
		Sent:      stats.Sent,
		Lost:      stats.Lost,
		Corrupted: stats.Corrupted,
		Pending:   s.queue.Len(),
	}
}
