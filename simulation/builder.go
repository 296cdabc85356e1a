package simulation

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/rdtsim/channel"
	"github.com/sarchlab/rdtsim/datarecording"
	"github.com/sarchlab/rdtsim/monitoring"
	"github.com/sarchlab/rdtsim/rdt"
	"github.com/sarchlab/rdtsim/sim"
	"github.com/sarchlab/rdtsim/timer"
	"github.com/sarchlab/rdtsim/tracing"
	"github.com/sarchlab/rdtsim/traffic"
)

// Builder can be used to build a simulation.
type Builder struct {
	config Config
	output io.Writer
	rng    sim.RandomSource
	idGen  sim.IDGenerator

	recordOn   bool
	recordPath string

	monitorOn   bool
	monitorPort int
	openBrowser bool
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
		output: os.Stdout,
	}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// WithOutput sets where the trace is written.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.output = w
	return b
}

// WithRandomSource replaces the seeded random source.
func (b Builder) WithRandomSource(rng sim.RandomSource) Builder {
	b.rng = rng
	return b
}

// WithParallelIDGenerator makes event IDs globally unique instead of
// sequential.
func (b Builder) WithParallelIDGenerator() Builder {
	b.idGen = sim.NewParallelIDGenerator()
	return b
}

// WithRecording stores the events, transmissions and deliveries into a SQLite
// file. An empty path picks a unique file name.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.recordPath = path

	return b
}

// WithMonitor starts the monitoring server. A zero port picks a random one.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// WithBrowser opens the monitoring page once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.openBrowser && !b.monitorOn {
		panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build checks the random source and creates the simulation with the first
// message scheduled.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	rng := b.rng
	if rng == nil {
		rng = sim.NewRandomSource(b.config.Seed)
	}

	if err := sim.CheckUniformity(rng, sim.SelfTestSamples); err != nil {
		return nil, err
	}

	s := &Simulation{
		HookableBase: sim.NewHookableBase(),
		config:       b.config,
		tracer:       tracing.NewTracer(b.output, b.config.TraceLevel),
		queue:        sim.NewEventQueue(b.idGen),
	}

	b.buildEntities(s, rng)

	if b.recordOn {
		if err := b.attachRecorder(s); err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		if err := b.attachMonitor(s); err != nil {
			_ = s.Terminate()
			return nil, err
		}
	}

	s.generator.ScheduleNext()

	return s, nil
}

func (b Builder) buildEntities(s *Simulation, rng sim.RandomSource) {
	s.channel = channel.MakeBuilder().
		WithScheduler(s).
		WithRandomSource(rng).
		WithLossProbability(b.config.LossProbability).
		WithCorruptionProbability(b.config.CorruptionProbability).
		Build()
	s.channel.AcceptHook(tracing.NewChannelTracer(s.tracer))
	s.AcceptHook(tracing.NewEventTracer(s.tracer))

	s.timers = timer.NewService(s, s.tracer)

	s.sender = rdt.NewSender(s.channel, s.tracer)
	if b.config.RetransmitTimeout > 0 {
		s.sender.WithRetransmitTimer(
			s.timers, sim.VTimeInSec(b.config.RetransmitTimeout))
	}

	s.receiver = rdt.NewReceiver(s.channel, s, s.tracer)

	s.entities = map[sim.Entity]rdt.Entity{
		sim.EntityA: s.sender,
		sim.EntityB: s.receiver,
	}

	s.generator = traffic.NewGenerator(
		s, rng, b.config.MeanInterarrival, s.tracer)
}

func (b Builder) attachRecorder(s *Simulation) error {
	recorder, err := datarecording.New(b.recordPath)
	if err != nil {
		return fmt.Errorf("creating recorder: %w", err)
	}

	dbTracer, err := tracing.NewDBTracer(recorder)
	if err != nil {
		_ = recorder.Close()
		return err
	}

	s.recorder = recorder
	s.dbTracer = dbTracer
	s.AcceptHook(dbTracer)
	s.channel.AcceptHook(dbTracer)

	return nil
}

func (b Builder) attachMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterEngine(s)
	for _, c := range s.monitoredComponents() {
		s.monitor.RegisterComponent(c)
	}

	s.progress = s.monitor.CreateProgressBar(
		"Messages", uint64(b.config.MaxMessages))

	url, err := s.monitor.StartServer()
	if err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}

	if b.openBrowser {
		if err := s.monitor.OpenInBrowser(url); err != nil {
			log.Printf("cannot open %s in browser: %v", url, err)
		}
	}

	return nil
}
