// Package position implements the phase-differential displacement
// tracker, grounded on original_source/src/noptica.rs's Tracker and
// generalized per spec.md §4.3.
package position

import "noptica/internal/fixedpoint"

// Tracker accumulates the phase deficit between successive measurement
// edges into an optical displacement expressed in reference-phase turns.
type Tracker struct {
	lastPhase       int64
	currentPosition int64
}

// New returns a zeroed Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Edge consumes the DPLL's unwrapped phase at a MEAS rising edge and
// returns the updated accumulated position.
func (t *Tracker) Edge(phaseUnwrapped int64) int64 {
	phaseDiff := fixedpoint.WrappingSub(phaseUnwrapped, t.lastPhase)
	t.lastPhase = phaseUnwrapped
	t.currentPosition += fixedpoint.Turn - phaseDiff
	return t.currentPosition
}

// Reset zeroes the running position. The last seen phase is kept, so
// the next Edge measures its difference against it.
func (t *Tracker) Reset() {
	t.currentPosition = 0
}

// Position returns the current accumulated value without consuming an
// edge.
func (t *Tracker) Position() int64 { return t.currentPosition }
