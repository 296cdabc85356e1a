package tracing

import (
	"io"
	"log"
)

// Level controls how much a Tracer prints.
type Level int

// Trace levels.
const (
	LevelSilent Level = iota
	LevelNotice
	LevelEvent
	LevelPacket
)

// A Tracer prints human-readable trace lines that are at or below its level.
// A nil Tracer prints nothing.
type Tracer struct {
	level  Level
	logger *log.Logger
}

// NewTracer creates a Tracer that writes into w.
func NewTracer(w io.Writer, level Level) *Tracer {
	return &Tracer{
		level:  level,
		logger: log.New(w, "", 0),
	}
}

// Level returns the configured level.
func (t *Tracer) Level() Level {
	if t == nil {
		return LevelSilent
	}

	return t.level
}

// Enabled tells if lines at the given level are printed.
func (t *Tracer) Enabled(level Level) bool {
	if t == nil {
		return false
	}

	return level != LevelSilent && level <= t.level
}

// Logf prints a line if the level is enabled.
func (t *Tracer) Logf(level Level, format string, args ...any) {
	if !t.Enabled(level) {
		return
	}

	t.logger.Printf(format, args...)
}
