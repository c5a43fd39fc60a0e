// Package logging wraps zerolog for the driver, learner, and evaluator debug
// tracing of spec.md §7 ("Cannot-alter surfaces as a normal learner stop,
// logged at Info level, not an error-level log").
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type (
	// Logger is a structured logger with spawn methods for child contexts.
	Logger struct {
		zerolog.Logger
	}

	// Options configures a new Logger.
	Options struct {
		Debug bool
	}

	logLevel string
)

const (
	DebugLevel logLevel = "DEBUG"
	InfoLevel  logLevel = "INFO"
	WarnLevel  logLevel = "WARN"
	ErrorLevel logLevel = "ERROR"
)

// New builds a Logger writing to stdout at Info level, or Debug level when
// Options.Debug is set.
func New(options Options) *Logger {
	var output io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if options.Debug {
		level = zerolog.DebugLevel
	}

	zerolog.TimestampFieldName = "T"
	zerolog.LevelFieldName = "L"
	zerolog.MessageFieldName = "M"
	zerolog.LevelDebugValue = string(DebugLevel)
	zerolog.LevelInfoValue = string(InfoLevel)
	zerolog.LevelWarnValue = string(WarnLevel)
	zerolog.LevelErrorValue = string(ErrorLevel)

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{logger}
}

// SpawnForComponent returns a child Logger tagged with the component name
// (e.g. "eval", "learner.greedy", "taskctl").
func (l *Logger) SpawnForComponent(component string) *Logger {
	return &Logger{l.With().Str("component", component).Logger()}
}

// SpawnForRun returns a child Logger tagged with a run identifier, used by
// taskctl to trace a dispatched learner's log lines back to its result.
func (l *Logger) SpawnForRun(runID string) *Logger {
	return &Logger{l.With().Str("runID", runID).Logger()}
}
