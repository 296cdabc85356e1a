package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rdtsim/packet"
)

var _ = Describe("EventQueue", func() {
	var (
		queue *EventQueue
	)

	BeforeEach(func() {
		queue = NewEventQueue(NewSequentialIDGenerator())
	})

	It("should pop in order", func() {
		r := rand.New(rand.NewSource(1))
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(NewEvent(
				VTimeInSec(r.Float64()*100), MessageReady, EntityA))
		}

		now := VTimeInSec(-1)
		for i := 0; i < numEvents; i++ {
			evt, err := queue.Pop()
			Expect(err).NotTo(HaveOccurred())
			Expect(evt.Time >= now).To(BeTrue())
			now = evt.Time
		}
	})

	It("should assign IDs from the given generator", func() {
		queue = NewEventQueue(NewParallelIDGenerator())
		queue.Push(NewEvent(1, MessageReady, EntityA))
		queue.Push(NewEvent(2, MessageReady, EntityA))

		first, _ := queue.Pop()
		second, _ := queue.Pop()

		Expect(first.ID).To(HaveLen(20))
		Expect(second.ID).To(HaveLen(20))
		Expect(first.ID).NotTo(Equal(second.ID))
	})

	It("should keep insertion order for equal times", func() {
		queue.Push(NewEvent(5, MessageReady, EntityA))
		queue.Push(NewEvent(5, TimerInterrupt, EntityA))
		queue.Push(NewEvent(1, PacketArrival, EntityB))
		queue.Push(NewEvent(5, PacketArrival, EntityB))

		kinds := []EventKind{}
		for queue.Len() > 0 {
			evt, err := queue.Pop()
			Expect(err).NotTo(HaveOccurred())
			kinds = append(kinds, evt.Kind)
		}

		Expect(kinds).To(Equal([]EventKind{
			PacketArrival, MessageReady, TimerInterrupt, PacketArrival,
		}))
	})

	It("should assign IDs", func() {
		queue.Push(NewEvent(1, MessageReady, EntityA))
		queue.Push(Event{ID: "custom", Time: 2, Kind: MessageReady})

		first, _ := queue.Pop()
		second, _ := queue.Pop()

		Expect(first.ID).To(Equal("1"))
		Expect(second.ID).To(Equal("custom"))
	})

	It("should report an empty queue", func() {
		_, err := queue.Pop()
		Expect(err).To(MatchError(ErrEmptyQueue))

		_, err = queue.Peek()
		Expect(err).To(MatchError(ErrEmptyQueue))
	})

	It("should peek without removing", func() {
		queue.Push(NewEvent(3, MessageReady, EntityA))
		queue.Push(NewEvent(2, TimerInterrupt, EntityB))

		evt, err := queue.Peek()

		Expect(err).NotTo(HaveOccurred())
		Expect(evt.Time).To(Equal(VTimeInSec(2)))
		Expect(queue.Len()).To(Equal(2))
	})

	It("should cancel the earliest matching event", func() {
		queue.Push(NewEvent(7, TimerInterrupt, EntityA))
		queue.Push(NewEvent(3, TimerInterrupt, EntityA))
		queue.Push(NewEvent(1, TimerInterrupt, EntityB))
		queue.Push(NewEvent(2, MessageReady, EntityA))

		Expect(queue.Cancel(TimerInterrupt, EntityA)).To(BeTrue())
		Expect(queue.Len()).To(Equal(3))

		times := []VTimeInSec{}
		for queue.Len() > 0 {
			evt, _ := queue.Pop()
			times = append(times, evt.Time)
		}

		Expect(times).To(Equal([]VTimeInSec{1, 2, 7}))
	})

	It("should not cancel when nothing matches", func() {
		queue.Push(NewEvent(1, TimerInterrupt, EntityB))

		Expect(queue.Cancel(TimerInterrupt, EntityA)).To(BeFalse())
		Expect(queue.Cancel(MessageReady, EntityB)).To(BeFalse())
		Expect(queue.Len()).To(Equal(1))
	})

	It("should keep heap order after cancelling from the middle", func() {
		r := rand.New(rand.NewSource(7))
		for i := 0; i < 50; i++ {
			queue.Push(NewEvent(
				VTimeInSec(r.Float64()*10), MessageReady, EntityA))
			queue.Push(NewEvent(
				VTimeInSec(r.Float64()*10), TimerInterrupt, Entity(i%2)))
		}

		for i := 0; i < 20; i++ {
			Expect(queue.Cancel(TimerInterrupt, Entity(i%2))).To(BeTrue())
		}

		now := VTimeInSec(-1)
		for queue.Len() > 0 {
			evt, _ := queue.Pop()
			Expect(evt.Time >= now).To(BeTrue())
			now = evt.Time
		}
	})

	It("should tell pending events", func() {
		queue.Push(NewArrivalEvent(4, EntityB, packet.Packet{SeqNum: 1}))

		Expect(queue.Pending(PacketArrival, EntityB)).To(BeTrue())
		Expect(queue.Pending(PacketArrival, EntityA)).To(BeFalse())
		Expect(queue.PendingKind(PacketArrival)).To(BeTrue())
		Expect(queue.PendingKind(TimerInterrupt)).To(BeFalse())
	})
})

var _ = Describe("Event", func() {
	It("should carry a private copy of the packet", func() {
		p := packet.Packet{SeqNum: 1, AckNum: 0}
		evt := NewArrivalEvent(1, EntityB, p)

		p.SeqNum = 0

		Expect(evt.Packet.SeqNum).To(Equal(1))
	})

	It("should name entities and kinds", func() {
		Expect(EntityA.Peer()).To(Equal(EntityB))
		Expect(EntityB.Peer()).To(Equal(EntityA))
		Expect(EntityA.String()).To(Equal("A"))
		Expect(PacketArrival.String()).To(Equal("fromlayer3"))
		Expect(EventKind(9).String()).To(Equal("kind(9)"))
	})
})
