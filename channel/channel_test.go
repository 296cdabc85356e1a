package channel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/sim"
)

type scriptedSource struct {
	values []float64
}

func (s *scriptedSource) Float64() float64 {
	Expect(s.values).NotTo(BeEmpty(), "random source exhausted")

	v := s.values[0]
	s.values = s.values[1:]

	return v
}

type recordingScheduler struct {
	now    sim.VTimeInSec
	events []sim.Event
}

func (s *recordingScheduler) CurrentTime() sim.VTimeInSec {
	return s.now
}

func (s *recordingScheduler) Schedule(e sim.Event) {
	s.events = append(s.events, e)
}

func dataPacket(seq int, b byte) packet.Packet {
	p := packet.Packet{SeqNum: seq, Payload: packet.MakeMessage(b).Data}
	p.Seal()

	return p
}

var _ = Describe("Emulator", func() {
	var (
		scheduler *recordingScheduler
		rng       *scriptedSource
	)

	BeforeEach(func() {
		scheduler = &recordingScheduler{}
		rng = &scriptedSource{}
	})

	build := func(loss, corrupt float64) *Emulator {
		return MakeBuilder().
			WithScheduler(scheduler).
			WithRandomSource(rng).
			WithLossProbability(loss).
			WithCorruptionProbability(corrupt).
			Build()
	}

	It("should drop a packet when the loss draw is below the probability", func() {
		c := build(0.5, 0)
		rng.values = []float64{0.1}

		c.Send(sim.EntityA, dataPacket(0, 'a'))

		Expect(scheduler.events).To(BeEmpty())
		Expect(c.Stats()).To(Equal(Stats{Sent: 1, Lost: 1}))
	})

	It("should schedule an arrival at the peer", func() {
		c := build(0, 0)
		scheduler.now = 10
		rng.values = []float64{0.9, 0.5, 0.99}
		p := dataPacket(0, 'a')

		c.Send(sim.EntityA, p)

		Expect(scheduler.events).To(HaveLen(1))
		evt := scheduler.events[0]
		Expect(evt.Kind).To(Equal(sim.PacketArrival))
		Expect(evt.Entity).To(Equal(sim.EntityB))
		Expect(evt.Time).To(BeNumerically("~", 15.5, 1e-9))
		Expect(*evt.Packet).To(Equal(p))
		Expect(c.Stats()).To(Equal(Stats{Sent: 1}))
	})

	It("should not reorder packets to the same destination", func() {
		c := build(0, 0)
		rng.values = []float64{
			0.5, 0.9, 0.5,
			0.5, 0.0, 0.5,
		}

		c.Send(sim.EntityA, dataPacket(0, 'a'))
		c.Send(sim.EntityA, dataPacket(1, 'b'))

		Expect(scheduler.events).To(HaveLen(2))
		Expect(scheduler.events[0].Time).To(BeNumerically("~", 9.1, 1e-9))
		Expect(scheduler.events[1].Time).To(BeNumerically("~", 10.1, 1e-9))
	})

	It("should track each destination separately", func() {
		c := build(0, 0)
		rng.values = []float64{
			0.5, 1.0 - 1e-12, 0.5,
			0.5, 0.0, 0.5,
		}

		c.Send(sim.EntityA, dataPacket(0, 'a'))
		c.Send(sim.EntityB, dataPacket(0, 0))

		Expect(scheduler.events[1].Entity).To(Equal(sim.EntityA))
		Expect(scheduler.events[1].Time).To(BeNumerically("~", 1.0, 1e-9))

		last, ok := c.LatestArrival(sim.EntityB)
		Expect(ok).To(BeTrue())
		Expect(last).To(BeNumerically(">", 9.9))
	})

	It("should not let an old arrival hold back a later send", func() {
		c := build(0, 0)
		rng.values = []float64{0.5, 0.0, 0.5, 0.5, 0.0, 0.5}

		c.Send(sim.EntityA, dataPacket(0, 'a'))
		scheduler.now = 50
		c.Send(sim.EntityA, dataPacket(1, 'b'))

		Expect(scheduler.events[1].Time).To(BeNumerically("~", 51, 1e-9))
	})

	DescribeTable("corruption split",
		func(x float64, damage packet.Damage) {
			c := build(0, 1)
			rng.values = []float64{0.5, 0.5, 0.0, x}
			p := dataPacket(1, 'c')
			original := p

			c.Send(sim.EntityA, p)

			arrived := *scheduler.events[0].Packet
			Expect(arrived.Damage).To(Equal(damage))
			Expect(arrived.IsCorrupt()).To(BeTrue())
			Expect(p).To(Equal(original))
			Expect(c.Stats()).To(Equal(Stats{Sent: 1, Corrupted: 1}))

			switch damage {
			case packet.DamagePayload:
				Expect(arrived.Payload[0]).To(Equal(byte(DamageMarker)))
			case packet.DamageSeqNum:
				Expect(arrived.SeqNum).To(Equal(DamagedFieldValue))
			case packet.DamageAckNum:
				Expect(arrived.AckNum).To(Equal(DamagedFieldValue))
			}
		},
		Entry("payload", 0.0, packet.DamagePayload),
		Entry("payload upper edge", 0.7499, packet.DamagePayload),
		Entry("seqnum", 0.75, packet.DamageSeqNum),
		Entry("seqnum upper edge", 0.8749, packet.DamageSeqNum),
		Entry("acknum", 0.875, packet.DamageAckNum),
		Entry("acknum upper edge", 0.9999, packet.DamageAckNum),
	)

	It("should notify hooks", func() {
		c := build(0.5, 0)
		rng.values = []float64{0.1, 0.9, 0.0, 0.9}
		positions := []string{}
		c.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			positions = append(positions, ctx.Pos.Name)
			Expect(ctx.Item).To(BeAssignableToTypeOf(Transmission{}))
		}))

		c.Send(sim.EntityA, dataPacket(0, 'a'))
		c.Send(sim.EntityB, dataPacket(0, 0))

		Expect(positions).To(Equal([]string{
			"PacketSent", "PacketLost",
			"PacketSent", "ArrivalScheduled",
		}))
	})

	It("should keep arrivals ordered under random draws", func() {
		c := MakeBuilder().
			WithScheduler(scheduler).
			WithRandomSource(sim.NewRandomSource(3)).
			WithLossProbability(0.3).
			WithCorruptionProbability(0.3).
			Build()

		for i := 0; i < 500; i++ {
			scheduler.now += sim.VTimeInSec(i % 3)
			c.Send(sim.Entity(i%2), dataPacket(i%2, 'a'))
		}

		last := map[sim.Entity]sim.VTimeInSec{}
		for _, evt := range scheduler.events {
			Expect(evt.Time).To(BeNumerically(">=", last[evt.Entity]))
			last[evt.Entity] = evt.Time
		}

		stats := c.Stats()
		Expect(stats.Sent).To(Equal(500))
		Expect(stats.Sent - stats.Lost).To(Equal(len(scheduler.events)))
	})

	It("should refuse invalid probabilities", func() {
		Expect(func() { build(1.5, 0) }).To(Panic())
		Expect(func() { build(0, -0.1) }).To(Panic())
	})
})
