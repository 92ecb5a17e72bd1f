// Package diag abstracts the "report to the error channel" behavior that
// spec.md requires of the DPLL, quadrant tracker and fringe counter
// (recoverable pipeline invariants are reported, never silently
// swallowed, and never fatal). It is grounded on the lifecycle shape of
// the teacher's log.go (log_init/log_write/log_term around a
// package-owned sink) but reworked as an injectable interface so the
// core DSP packages stay free of global state.
package diag

import (
	"fmt"

	charmlog "github.com/charmbracelet/log"
)

// Sink receives one recoverable diagnostic at a time. kind is a short,
// stable tag ("dpll.lock", "quadrant.transition", "fringe.abort", ...);
// detail is a human-readable message.
type Sink interface {
	Report(kind, detail string)
}

// Discard drops every diagnostic. Useful in tests that only care about
// the DSP output, not the error channel.
type Discard struct{}

func (Discard) Report(string, string) {}

// Logger reports diagnostics through a structured charmbracelet/log
// logger, one warning-level entry per occurrence.
type Logger struct {
	log *charmlog.Logger
}

// NewLogger wraps an existing *charmlog.Logger, or builds a default
// stderr logger when l is nil.
func NewLogger(l *charmlog.Logger) *Logger {
	if l == nil {
		l = charmlog.Default()
	}
	return &Logger{log: l}
}

func (d *Logger) Report(kind, detail string) {
	d.log.Warn(detail, "kind", kind)
}

// Collector accumulates diagnostics in memory, for tests that assert on
// what was reported.
type Collector struct {
	Events []Event
}

type Event struct {
	Kind   string
	Detail string
}

func (c *Collector) Report(kind, detail string) {
	c.Events = append(c.Events, Event{Kind: kind, Detail: detail})
}

func (c *Collector) String() string {
	return fmt.Sprint(c.Events)
}
