// Package logger builds the structured JSON logger shared by every service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TimestampField is the key carrying the RFC3339Nano event time.
const TimestampField = "ts"

// New returns a zerolog logger writing one JSON object per line to stdout.
func New(serviceName, level string, loc *time.Location) zerolog.Logger {
	return NewWithWriter(os.Stdout, serviceName, level, loc)
}

// NewWithWriter is New with an explicit destination. Unknown levels fall back to info.
// Timestamps are rendered in loc by a per-logger hook; zerolog globals are left alone.
func NewWithWriter(w io.Writer, serviceName, level string, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}

	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && parsed != zerolog.NoLevel {
		lvl = parsed
	}

	return zerolog.New(w).
		Level(lvl).
		Hook(timestampHook{loc: loc}).
		With().
		Str("service", serviceName).
		Logger()
}

type timestampHook struct {
	loc *time.Location
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(TimestampField, time.Now().In(h.loc).Format(time.RFC3339Nano))
}
