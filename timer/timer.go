// Package timer provides a single-shot timer per entity on top of the event
// scheduler.
package timer

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/tracing"
)

// ErrTimerAlreadyRunning is reported when starting a timer that is pending.
var ErrTimerAlreadyRunning = errors.New(
	"attempt to start a timer that is already started")

// ErrTimerNotRunning is reported when stopping a timer that is not pending.
var ErrTimerNotRunning = errors.New(
	"unable to cancel your timer. It wasn't running")

// Service starts and stops the timers of the entities. Both conditions above
// are warnings. The simulation goes on after them.
type Service struct {
	scheduler sim.CancelableScheduler
	tracer    *tracing.Tracer
}

// NewService creates a timer service.
func NewService(
	scheduler sim.CancelableScheduler,
	tracer *tracing.Tracer,
) *Service {
	return &Service{
		scheduler: scheduler,
		tracer:    tracer,
	}
}

// Start schedules a TimerInterrupt for the entity after the given duration.
// Starting a running timer neither resets nor stacks it.
func (s *Service) Start(entity sim.Entity, duration sim.VTimeInSec) error {
	now := s.scheduler.CurrentTime()
	s.tracer.Logf(tracing.LevelPacket,
		"          START TIMER: starting timer at %f", now)

	if s.scheduler.Pending(sim.TimerInterrupt, entity) {
		err := fmt.Errorf("entity %s: %w", entity, ErrTimerAlreadyRunning)
		s.tracer.Logf(tracing.LevelNotice, "Warning: %v", err)

		return err
	}

	s.scheduler.Schedule(
		sim.NewEvent(now+duration, sim.TimerInterrupt, entity))

	return nil
}

// Stop cancels the pending TimerInterrupt of the entity.
func (s *Service) Stop(entity sim.Entity) error {
	s.tracer.Logf(tracing.LevelPacket,
		"          STOP TIMER: stopping timer at %f",
		s.scheduler.CurrentTime())

	if !s.scheduler.Cancel(sim.TimerInterrupt, entity) {
		err := fmt.Errorf("entity %s: %w", entity, ErrTimerNotRunning)
		s.tracer.Logf(tracing.LevelNotice, "Warning: %v", err)

		return err
	}

	return nil
}

// Running tells if the entity has a pending timer.
func (s *Service) Running(entity sim.Entity) bool {
	return s.scheduler.Pending(sim.TimerInterrupt, entity)
}
