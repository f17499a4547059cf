// Package logging builds the structured loggers used across rewind.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPrefix is prepended to every line unless Options.Prefix is set.
const DefaultPrefix = "rewind"

// Options configures a logger.
type Options struct {
	// Level is the minimum level to output.
	Level log.Level
	// Prefix is prepended to all log messages.
	Prefix string
	// Timestamps enables the time column.
	Timestamps bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Prefix:          prefix,
		ReportTimestamp: opts.Timestamps,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel parses a level name. Matching is case-insensitive and
// "warning" is accepted for warn.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
