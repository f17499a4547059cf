package session

import (
	"github.com/charmbracelet/log"
	"github.com/dshills/rewind/internal/metrics"
)

// DefaultMaxEntries is the history cap used when no option overrides it.
const DefaultMaxEntries = 1000

type options struct {
	name       string
	maxEntries int
	logger     *log.Logger
	metrics    *metrics.Metrics
}

func defaultOptions() options {
	return options{
		name:       "session",
		maxEntries: DefaultMaxEntries,
	}
}

// Option configures a Session.
type Option func(*options)

// WithName sets the name attached to log lines.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxEntries caps the history. Zero or negative means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		o.maxEntries = n
	}
}

// WithLogger sets the logger for history events. Nil discards.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics reports history events and patch timings to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
