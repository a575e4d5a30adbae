package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a logger writing timestamped lines to w, e.g. "14:32:01.45 INFO ...".
// Debug messages are shown only when debug is set.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Progress tracks the start of a pipeline step and logs its duration when done.
// It is meant for sequential use by a single goroutine.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress starts timing a step.
func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Done logs msg at debug level with an elapsed key, e.g. "decoded TOON elapsed=1ms".
func (p *Progress) Done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Debug(msg, keyvals...)
}
