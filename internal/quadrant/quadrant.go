// Package quadrant implements the scan-segment state machine, grounded
// on original_source/src/wavemeter.rs's QuadrantTracker and generalized
// per spec.md §4.6.
package quadrant

import (
	"fmt"
	"math"

	"noptica/internal/diag"
)

// State names one segment of a scan cycle.
type State int

const (
	BelowMin State = iota
	Up
	AboveMax
	Down
)

func (s State) String() string {
	switch s {
	case BelowMin:
		return "BelowMin"
	case Up:
		return "Up"
	case AboveMax:
		return "AboveMax"
	case Down:
		return "Down"
	default:
		return "Unknown"
	}
}

// Tracker classifies each incoming position sample into the scan
// quadrant it belongs to and exposes the four boundary-crossing
// predicates the fringe counter is driven from.
type Tracker struct {
	state, prev State

	min, max        int64
	newMin, newMax  int64
	middle          int64
	prevAboveMiddle bool
	diagnostics     diag.Sink
}

// New returns a Tracker trapped in BelowMin until UpdateLimits is first
// called (min=+inf, max=-inf sentinels).
func New(sink diag.Sink) *Tracker {
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Tracker{
		state:       BelowMin,
		prev:        BelowMin,
		min:         math.MaxInt64,
		max:         math.MinInt64,
		middle:      math.MaxInt64,
		diagnostics: sink,
	}
}

// Reset returns the tracker to its just-constructed state, used on DPLL
// unlock recovery.
func (t *Tracker) Reset() {
	sink := t.diagnostics
	*t = *New(sink)
}

// UpdateLimits stages new scan bounds; they take effect on the next
// rising crossing of their midpoint, to avoid glitchy updates at the
// scan's turning points. The first call after New or Reset applies the
// bounds at once, ending the initial BelowMin trap.
func (t *Tracker) UpdateLimits(min, max int64) {
	t.newMin = min
	t.newMax = max
	t.middle = (min + max) / 2
	if t.min == math.MaxInt64 && t.max == math.MinInt64 {
		t.min, t.max = min, max
	}
}

// Input classifies one position sample and advances the state machine.
func (t *Tracker) Input(position int64) {
	aboveMin := position > t.min
	belowMax := position < t.max

	var next State
	switch {
	case aboveMin && belowMax:
		switch t.state {
		case BelowMin, Up:
			next = Up
		default:
			next = Down
		}
	case aboveMin:
		next = AboveMax
	default:
		next = BelowMin
	}

	if next != t.state {
		if !isCanonicalTransition(t.state, next) {
			t.diagnostics.Report("quadrant.transition",
				fmt.Sprintf("invalid quadrant transition: %s -> %s", t.state, next))
		}
		t.prev = t.state
		t.state = next
	} else {
		t.prev = t.state
	}

	aboveMiddle := position > t.middle
	if aboveMiddle && !t.prevAboveMiddle {
		t.min, t.max = t.newMin, t.newMax
	}
	t.prevAboveMiddle = aboveMiddle
}

func isCanonicalTransition(from, to State) bool {
	switch {
	case from == BelowMin && to == Up:
		return true
	case from == Up && to == AboveMax:
		return true
	case from == AboveMax && to == Down:
		return true
	case from == Down && to == BelowMin:
		return true
	default:
		return false
	}
}

// State returns the current quadrant.
func (t *Tracker) State() State { return t.state }

// UpStart is true immediately after an Input call that transitioned
// BelowMin -> Up.
func (t *Tracker) UpStart() bool { return t.prev == BelowMin && t.state == Up }

// UpEnd is true immediately after an Input call that transitioned
// Up -> AboveMax.
func (t *Tracker) UpEnd() bool { return t.prev == Up && t.state == AboveMax }

// DownStart is true immediately after an Input call that transitioned
// AboveMax -> Down.
func (t *Tracker) DownStart() bool { return t.prev == AboveMax && t.state == Down }

// DownEnd is true immediately after an Input call that transitioned
// Down -> BelowMin.
func (t *Tracker) DownEnd() bool { return t.prev == Down && t.state == BelowMin }
