package simulation

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/rdtsim/channel"
	"github.com/sarchlab/rdtsim/datarecording"
	"github.com/sarchlab/rdtsim/monitoring"
	"github.com/sarchlab/rdtsim/packet"
	"github.com/sarchlab/rdtsim/rdt"
	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/timer"
	"github.com/sarchlab/rdtsim/tracing"
	"github.com/sarchlab/rdtsim/traffic"
)

// ErrUnknownEventKind is returned when the driver pops an event it cannot
// dispatch.
var ErrUnknownEventKind = errors.New("unknown event kind")

// ErrUnknownEntity is returned when an event targets an entity that does not
// exist.
var ErrUnknownEntity = errors.New("unknown entity")

// StopReason tells why a run ended.
type StopReason int

// Stop reasons.
const (
	NotStopped StopReason = iota
	StopLimitReached
	StopDrained
	StopDeadline
	StopError
)

func (r StopReason) String() string {
	switch r {
	case NotStopped:
		return "not-stopped"
	case StopLimitReached:
		return "limit-reached"
	case StopDrained:
		return "drained"
	case StopDeadline:
		return "deadline"
	case StopError:
		return "error"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Stats is a snapshot of the counters of a simulation.
type Stats struct {
	Now         sim.VTimeInSec
	Accepted    int
	Delivered   int
	SenderState rdt.State
	SenderSends int
	LastGoodSeq int
	Channel     channel.Stats
	Receiver    rdt.ReceiverStats
	StopReason  StopReason
}

// A Simulation runs the two protocol entities over the emulated channel. It
// owns the event list and the simulated clock.
type Simulation struct {
	*sim.HookableBase

	config Config
	tracer *tracing.Tracer

	timeLock sync.RWMutex
	now      sim.VTimeInSec
	queue    *sim.EventQueue

	channel   *channel.Emulator
	timers    *timer.Service
	sender    *rdt.Sender
	receiver  *rdt.Receiver
	generator *traffic.Generator
	entities  map[sim.Entity]rdt.Entity

	stateLock    sync.Mutex
	accepted     int
	sendsAtLimit int
	delivered    []packet.Message
	stopReason   StopReason

	isPaused      bool
	isPausedLock  sync.Mutex
	pauseLock     sync.Mutex
	singleRunLock sync.Mutex

	recorder datarecording.DataRecorder
	dbTracer *tracing.DBTracer
	monitor  *monitoring.Monitor
	progress *monitoring.ProgressBar
}

// CurrentTime returns the time of the event being handled.
func (s *Simulation) CurrentTime() sim.VTimeInSec {
	return s.readNow()
}

// Schedule adds an event to the event list.
func (s *Simulation) Schedule(evt sim.Event) {
	now := s.readNow()
	if evt.Time < now {
		log.Panicf("scheduling an event earlier than current time, "+
			"evt %s @ %.10f, now %.10f", evt.Kind, evt.Time, now)
	}

	s.queue.Push(evt)
}

// Pending tells if an event of the given kind is pending for the entity.
func (s *Simulation) Pending(kind sim.EventKind, entity sim.Entity) bool {
	return s.queue.Pending(kind, entity)
}

// Cancel removes the earliest pending event of the given kind for the entity.
func (s *Simulation) Cancel(kind sim.EventKind, entity sim.Entity) bool {
	return s.queue.Cancel(kind, entity)
}

// Deliver receives a message that an entity passes to its upper layer.
func (s *Simulation) Deliver(entity sim.Entity, m packet.Message) {
	now := s.readNow()

	s.tracer.Logf(tracing.LevelPacket,
		"          TOLAYER5: data received: %s", m)

	s.delivered = append(s.delivered, m)

	if s.dbTracer != nil {
		s.dbTracer.RecordDelivery(now, entity, m)
	}

	if s.progress != nil {
		s.progress.MoveInProgressToFinished(1)
	}
}

func (s *Simulation) readNow() sim.VTimeInSec {
	s.timeLock.RLock()
	t := s.now
	s.timeLock.RUnlock()

	return t
}

func (s *Simulation) writeNow(t sim.VTimeInSec) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}

// Run processes events until the message limit or the time limit is reached.
// A fault in the event list or an event that cannot be dispatched ends the
// run with an error.
func (s *Simulation) Run() error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	for {
		s.pauseLock.Lock()
		done, err := s.step()
		s.pauseLock.Unlock()

		if err != nil {
			s.stateLock.Lock()
			s.stopReason = StopError
			s.stateLock.Unlock()

			return err
		}

		if done {
			break
		}
	}

	s.finish()

	return nil
}

func (s *Simulation) step() (done bool, err error) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	if s.limitReached() && s.config.DrainInFlight && s.drained() {
		s.stopReason = StopDrained
		return true, nil
	}

	evt, err := s.queue.Pop()
	if err != nil {
		return true, fmt.Errorf("INTERNAL PANIC: %w", err)
	}

	if s.config.MaxSimTime > 0 &&
		evt.Time > sim.VTimeInSec(s.config.MaxSimTime) {
		s.stopReason = StopDeadline
		return true, nil
	}

	now := s.readNow()
	if evt.Time < now {
		log.Panicf("cannot run event in the past, evt %s @ %.10f, now %.10f",
			evt.Kind, evt.Time, now)
	}

	s.writeNow(evt.Time)

	if s.limitReached() {
		if !s.config.DrainInFlight {
			s.stopReason = StopLimitReached
			return true, nil
		}

		if evt.Kind == sim.MessageReady {
			return false, nil
		}
	}

	hookCtx := sim.HookCtx{
		Domain: s,
		Now:    evt.Time,
		Pos:    sim.HookPosBeforeEvent,
		Item:   evt,
	}
	s.InvokeHook(hookCtx)

	err = s.dispatch(evt)

	hookCtx.Pos = sim.HookPosAfterEvent
	s.InvokeHook(hookCtx)

	return false, err
}

func (s *Simulation) limitReached() bool {
	return s.accepted >= s.config.MaxMessages
}

// drained tells if the last accepted message has finished its round trip.
// The round trip ends when A is ready again, when A has started to resend,
// or when nothing is left on the channel.
func (s *Simulation) drained() bool {
	if s.sender.State() == rdt.Ready {
		return true
	}

	if s.sender.Sends() > s.sendsAtLimit {
		return true
	}

	return !s.queue.PendingKind(sim.PacketArrival)
}

func (s *Simulation) dispatch(evt sim.Event) error {
	entity, ok := s.entities[evt.Entity]
	if !ok {
		return fmt.Errorf("INTERNAL PANIC: %w: %d", ErrUnknownEntity,
			int(evt.Entity))
	}

	switch evt.Kind {
	case sim.MessageReady:
		return s.handleMessageReady(evt, entity)
	case sim.PacketArrival:
		if evt.Packet == nil {
			return fmt.Errorf("INTERNAL PANIC: arrival %s carries no packet",
				evt.ID)
		}

		entity.Input(*evt.Packet)
	case sim.TimerInterrupt:
		entity.TimerInterrupt()
	default:
		return fmt.Errorf("INTERNAL PANIC: %w: %d", ErrUnknownEventKind,
			int(evt.Kind))
	}

	return nil
}

func (s *Simulation) handleMessageReady(
	evt sim.Event,
	entity rdt.Entity,
) error {
	msg := traffic.MessageFor(s.accepted)

	s.tracer.Logf(tracing.LevelPacket,
		"          MAINLOOP: data given to student: %s", msg)

	err := entity.Output(msg)

	switch {
	case errors.Is(err, rdt.ErrBusy):
		s.tracer.Logf(tracing.LevelNotice,
			"          MAINLOOP: data NOT accepted by layer 4 (student code)")
		s.generator.Schedule(evt.Entity)

		return nil
	case err != nil:
		return fmt.Errorf("entity %s cannot send: %w", evt.Entity, err)
	}

	s.tracer.Logf(tracing.LevelNotice,
		"          MAINLOOP: data accepted by layer 4 (student code)")

	s.accepted++
	if s.progress != nil {
		s.progress.IncrementInProgress(1)
	}

	if s.limitReached() {
		s.sendsAtLimit = s.sender.Sends()
	}

	s.generator.ScheduleNext()

	return nil
}

func (s *Simulation) finish() {
	stats := s.Stats()

	s.tracer.Logf(tracing.LevelNotice,
		" Simulator terminated at time %f\n after sending %d msgs from layer5"+
			" (%d delivered, stop reason %s)",
		stats.Now, stats.Accepted, stats.Delivered, stats.StopReason)

	if s.monitor != nil {
		s.monitor.CompleteProgressBar(s.progress)
	}
}

// Pause prevents the simulation from handling more events.
func (s *Simulation) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows the simulation to handle more events.
func (s *Simulation) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}

// Stats returns a snapshot of the counters.
func (s *Simulation) Stats() Stats {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	return s.statsLocked()
}

func (s *Simulation) statsLocked() Stats {
	return Stats{
		Now:         s.readNow(),
		Accepted:    s.accepted,
		Delivered:   len(s.delivered),
		SenderState: s.sender.State(),
		SenderSends: s.sender.Sends(),
		LastGoodSeq: s.receiver.LastGoodSeq(),
		Channel:     s.channel.Stats(),
		Receiver:    s.receiver.Stats(),
		StopReason:  s.stopReason,
	}
}

// Delivered returns the messages B has passed to its upper layer, in order.
func (s *Simulation) Delivered() []packet.Message {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	out := make([]packet.Message, len(s.delivered))
	copy(out, s.delivered)

	return out
}

// Sender returns entity A.
func (s *Simulation) Sender() *rdt.Sender {
	return s.sender
}

// Receiver returns entity B.
func (s *Simulation) Receiver() *rdt.Receiver {
	return s.receiver
}

// Channel returns the channel emulator.
func (s *Simulation) Channel() *channel.Emulator {
	return s.channel
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config {
	return s.config
}

// Monitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Terminate releases the recorder and stops the monitoring server.
func (s *Simulation) Terminate() error {
	var result *multierror.Error

	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if s.monitor != nil {
		if err := s.monitor.StopServer(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
