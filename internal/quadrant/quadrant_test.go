package quadrant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"noptica/internal/diag"
)

// S5 — Quadrant cycle scenario from spec.md §8.
func TestCanonicalCycleReportsNoInvalidTransition(t *testing.T) {
	collector := &diag.Collector{}
	tr := New(collector)
	tr.UpdateLimits(0, 100)

	inputs := []int64{50, 150, 50, -10, 50}
	var states []State
	for _, p := range inputs {
		tr.Input(p)
		states = append(states, tr.State())
	}

	assert.Equal(t, []State{Up, AboveMax, Down, BelowMin, Up}, states)
	assert.Empty(t, collector.Events)
}

func TestTrappedInBelowMinBeforeInit(t *testing.T) {
	tr := New(nil)
	tr.Input(1_000_000)
	assert.Equal(t, BelowMin, tr.State())
}

func TestInvalidTransitionIsReportedButStateStillAdvances(t *testing.T) {
	collector := &diag.Collector{}
	tr := New(collector)
	tr.UpdateLimits(0, 100)
	tr.Input(50)  // BelowMin -> Up (canonical, first limits applied at once)
	tr.Input(150) // Up -> AboveMax
	tr.Input(150) // no-op, stays AboveMax
	// Stage new limits; they stay inactive because 0 is not above the new middle (0).
	tr.UpdateLimits(-1000, 1000)
	tr.Input(0) // 0 is not above the active min (0) -> AboveMax -> BelowMin, out of cycle
	assert.NotEmpty(t, collector.Events)
}

func TestUpStartAndUpEndPredicates(t *testing.T) {
	tr := New(nil)
	tr.UpdateLimits(0, 100)
	tr.Input(50)
	assert.True(t, tr.UpStart())
	assert.False(t, tr.UpEnd())

	tr.Input(150)
	assert.False(t, tr.UpStart())
	assert.True(t, tr.UpEnd())
}
