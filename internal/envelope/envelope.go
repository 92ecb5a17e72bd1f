// Package envelope implements the min/max sampling-window monitor used
// both for coarse displacement reporting and to derive scan-amplitude
// bounds for the quadrant tracker (spec.md §4.4). Reworked as a pull
// style component per SPEC_FULL.md's "callback-driven composition"
// design note: Input returns whatever it produced this tick instead of
// invoking a closure.
package envelope

import "math"

// MinMax tracks the minimum and maximum of the last cycleLen inputs and
// reports them, then resets, every cycleLen samples.
type MinMax struct {
	cycleLen int
	count    int
	curMin   int64
	curMax   int64
}

// New builds a MinMax with the given emission cycle length.
func New(cycleLen int) *MinMax {
	m := &MinMax{cycleLen: cycleLen}
	m.Reset()
	return m
}

// Reset clears the running min/max back to their sentinel extremes.
func (m *MinMax) Reset() {
	m.count = 0
	m.curMin = math.MaxInt64
	m.curMax = math.MinInt64
}

// Input folds one sample into the running envelope. emitted is true
// exactly when this call completed a cycle, in which case min/max are
// the just-completed window's bounds (the envelope has already been
// reset by the time Input returns).
func (m *MinMax) Input(p int64) (min, max int64, emitted bool) {
	if p > m.curMax {
		m.curMax = p
	}
	if p < m.curMin {
		m.curMin = p
	}
	m.count++
	if m.count == m.cycleLen {
		min, max = m.curMin, m.curMax
		m.Reset()
		return min, max, true
	}
	return 0, 0, false
}
