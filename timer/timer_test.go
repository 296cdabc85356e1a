package timer

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/tracing"
)

type queueScheduler struct {
	*sim.EventQueue
	now sim.VTimeInSec
}

func (s *queueScheduler) CurrentTime() sim.VTimeInSec {
	return s.now
}

func (s *queueScheduler) Schedule(e sim.Event) {
	s.Push(e)
}

var _ = Describe("Service", func() {
	var (
		scheduler *queueScheduler
		out       *bytes.Buffer
		service   *Service
	)

	BeforeEach(func() {
		scheduler = &queueScheduler{
			EventQueue: sim.NewEventQueue(nil),
			now:        5,
		}
		out = new(bytes.Buffer)
		service = NewService(
			scheduler, tracing.NewTracer(out, tracing.LevelNotice))
	})

	It("should schedule a timer interrupt", func() {
		Expect(service.Start(sim.EntityA, 20)).To(Succeed())

		evt, err := scheduler.Pop()
		Expect(err).NotTo(HaveOccurred())
		Expect(evt.Kind).To(Equal(sim.TimerInterrupt))
		Expect(evt.Entity).To(Equal(sim.EntityA))
		Expect(evt.Time).To(Equal(sim.VTimeInSec(25)))
	})

	It("should warn and not restart a running timer", func() {
		Expect(service.Start(sim.EntityA, 20)).To(Succeed())
		scheduler.now = 10

		err := service.Start(sim.EntityA, 20)

		Expect(err).To(MatchError(ErrTimerAlreadyRunning))
		Expect(out.String()).To(ContainSubstring("Warning"))
		Expect(scheduler.Len()).To(Equal(1))

		evt, _ := scheduler.Pop()
		Expect(evt.Time).To(Equal(sim.VTimeInSec(25)))
	})

	It("should keep timers of different entities apart", func() {
		Expect(service.Start(sim.EntityA, 20)).To(Succeed())
		Expect(service.Start(sim.EntityB, 20)).To(Succeed())

		Expect(service.Running(sim.EntityA)).To(BeTrue())
		Expect(service.Running(sim.EntityB)).To(BeTrue())
		Expect(scheduler.Len()).To(Equal(2))
	})

	It("should stop a running timer", func() {
		Expect(service.Start(sim.EntityB, 3)).To(Succeed())

		Expect(service.Stop(sim.EntityB)).To(Succeed())

		Expect(service.Running(sim.EntityB)).To(BeFalse())
		Expect(scheduler.Len()).To(Equal(0))
	})

	It("should warn when stopping a timer that is not running", func() {
		scheduler.Push(sim.NewEvent(7, sim.MessageReady, sim.EntityA))

		err := service.Stop(sim.EntityA)

		Expect(err).To(MatchError(ErrTimerNotRunning))
		Expect(out.String()).To(ContainSubstring("wasn't running"))
		Expect(scheduler.Len()).To(Equal(1))
	})

	It("should allow a restart after the timer fired", func() {
		Expect(service.Start(sim.EntityA, 1)).To(Succeed())
		_, err := scheduler.Pop()
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Start(sim.EntityA, 1)).To(Succeed())
	})
})
