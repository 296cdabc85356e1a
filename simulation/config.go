package simulation

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rdtsim/tracing"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the parameters of one simulation run.
type Config struct {
	// MaxMessages is the number of messages A must accept before the
	// simulation stops.
	MaxMessages int

	LossProbability       float64
	CorruptionProbability float64

	// MeanInterarrival is the average time between two upper-layer messages.
	MeanInterarrival float64

	// Seed seeds the random source. Zero seeds from the wall clock.
	Seed uint64

	TraceLevel tracing.Level

	// MaxSimTime stops the simulation before the first event later than it.
	// Zero means no limit.
	MaxSimTime float64

	// DrainInFlight lets the last accepted message finish its round trip
	// after MaxMessages is reached.
	DrainInFlight bool

	// RetransmitTimeout makes A resend on timer expiry. Zero disables the
	// timer, leaving retransmission to the acknowledgement content.
	RetransmitTimeout float64
}

// DefaultConfig returns the configuration the simulator starts with.
func DefaultConfig() Config {
	return Config{
		MaxMessages:           2,
		LossProbability:       0,
		CorruptionProbability: 0.9,
		MeanInterarrival:      100,
		Seed:                  0,
		TraceLevel:            tracing.LevelPacket,
		DrainInFlight:         true,
	}
}

// Validate checks that every value is in range.
func (c Config) Validate() error {
	switch {
	case c.MaxMessages <= 0:
		return fmt.Errorf("%w: max messages must be positive, got %d",
			ErrInvalidConfig, c.MaxMessages)
	case c.LossProbability < 0 || c.LossProbability > 1:
		return fmt.Errorf("%w: loss probability %f out of [0, 1]",
			ErrInvalidConfig, c.LossProbability)
	case c.CorruptionProbability < 0 || c.CorruptionProbability > 1:
		return fmt.Errorf("%w: corruption probability %f out of [0, 1]",
			ErrInvalidConfig, c.CorruptionProbability)
	case c.MeanInterarrival <= 0:
		return fmt.Errorf("%w: mean interarrival must be positive, got %f",
			ErrInvalidConfig, c.MeanInterarrival)
	case c.TraceLevel < tracing.LevelSilent || c.TraceLevel > tracing.LevelPacket:
		return fmt.Errorf("%w: trace level %d out of [0, 3]",
			ErrInvalidConfig, c.TraceLevel)
	case c.MaxSimTime < 0:
		return fmt.Errorf("%w: max simulated time must not be negative",
			ErrInvalidConfig)
	case c.RetransmitTimeout < 0:
		return fmt.Errorf("%w: retransmit timeout must not be negative",
			ErrInvalidConfig)
	}

	return nil
}
