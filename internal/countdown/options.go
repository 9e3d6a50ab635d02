package countdown

import (
	"io"
	"time"

	"countdown_tui/internal/timer"

	"github.com/sirupsen/logrus"
)

// Options represent the options for an Engine
type Options struct {
	Logger       logrus.FieldLogger
	TickInterval time.Duration
	OnFinished   func(State)
}

// DefaultOptions returns the default options for an Engine
func DefaultOptions() Options {
	return Options{
		Logger:       loggerWithFields(logrus.New()),
		TickInterval: timer.DefaultInterval,
	}
}

// WithLogLevel updates the log level of the Engine's logger
func (opts Options) WithLogLevel(level logrus.Level) Options {
	logger := logrus.New()
	logger.SetLevel(level)
	opts.Logger = loggerWithFields(logger)
	return opts
}

// WithLogOutput updates where the Engine's logger will log data to
func (opts Options) WithLogOutput(output io.Writer) Options {
	logger := logrus.New()
	logger.SetOutput(output)
	opts.Logger = loggerWithFields(logger)
	return opts
}

// WithLogger replaces the Engine's logger
func (opts Options) WithLogger(logger *logrus.Logger) Options {
	opts.Logger = loggerWithFields(logger)
	return opts
}

// WithTickInterval updates the period between ticks
func (opts Options) WithTickInterval(interval time.Duration) Options {
	opts.TickInterval = interval
	return opts
}

// WithOnFinished sets the callback invoked once every time a countdown
// reaches zero
func (opts Options) WithOnFinished(fn func(State)) Options {
	opts.OnFinished = fn
	return opts
}

func loggerWithFields(logger *logrus.Logger) logrus.FieldLogger {
	return logger.
		WithField("lib", "countdown_tui").
		WithField("pkg", "countdown").
		WithField("com", "engine")
}
