// Package fringe implements the fringe-counting state machine that
// converts INPUT rising edges observed during bounded up-ramp scans into
// a wavelength estimate, per spec.md §4.7 and the resumable-routine
// design note in SPEC_FULL.md (states AwaitStart, AcquireBoundary(0..3),
// CountBetween, AwaitSecondaryStart(k), SecondaryCount(k)). Grounded on
// the cooperative, one-event-at-a-time shape of the original wavemeter
// scan logic; Feed performs exactly one transition per call so no
// goroutine or generator support is required.
package fringe

import (
	"fmt"

	"noptica/internal/diag"
)

// EventKind tags one fringe-stream event.
type EventKind int

const (
	Start EventKind = iota
	Fringe
	End
)

// Event is one item of the {Start, Fringe(position), End} stream the
// counter consumes.
type Event struct {
	Kind     EventKind
	Position int64
}

// Result is one completed decimation group's wavelength estimate.
type Result struct {
	F1Avg           int64
	F2Avg           int64
	ExpectedFringes int64
	WavelengthUnits int64 // |F2Avg - F1Avg| / (ExpectedFringes - 1), in Turn units
}

type state int

const (
	stateAwaitStart state = iota
	stateAcquireBoundary
	stateCountBetween
	stateAwaitSecondaryStart
	stateSecondaryCount
)

// Counter is the per-scan fringe-counting state machine. One instance
// is owned by the pipeline for the lifetime of wavemeter mode.
type Counter struct {
	minFringes      int64
	fringeJitterTol float64
	decimation      int64

	diagnostics diag.Sink

	st state

	// boundary acquisition
	b                      [4]int64
	acquireIdx             int
	fringesBetweenBoundary int64

	// derived after CountBetween -> End
	nominalDistance int64
	jitterTol       float64
	limit1, limit2  int64
	expectedFringes int64
	f1Acc, f2Acc    int64

	// secondary acquisition
	secondaryIdx   int64 // 0 .. decimation-2
	secondaryCount int64
	lastKept       int64
	haveLastKept   bool
}

// New builds a Counter awaiting the first scan's Start event.
func New(minFringes int64, fringeJitterTol float64, decimation int64, sink diag.Sink) *Counter {
	if sink == nil {
		sink = diag.Discard{}
	}
	if decimation < 1 {
		decimation = 1
	}
	return &Counter{
		minFringes:      minFringes,
		fringeJitterTol: fringeJitterTol,
		decimation:      decimation,
		diagnostics:     sink,
		st:              stateAwaitStart,
	}
}

func (c *Counter) abort(kind, detail string) {
	c.diagnostics.Report(kind, detail)
	c.resetToAwaitStart()
}

// Reset discards any in-flight acquisition and returns the counter to
// AwaitStart, used on DPLL unlock recovery (spec.md §5) so a stale
// pre-unlock group never blends into the next scan.
func (c *Counter) Reset() {
	c.resetToAwaitStart()
}

func (c *Counter) resetToAwaitStart() {
	c.st = stateAwaitStart
	c.acquireIdx = 0
	c.fringesBetweenBoundary = 0
	c.secondaryIdx = 0
	c.secondaryCount = 0
	c.haveLastKept = false
}

// Feed consumes exactly one event and performs at most one state
// transition, returning a Result when a full decimation group
// completes.
func (c *Counter) Feed(ev Event) (Result, bool) {
	switch c.st {
	case stateAwaitStart:
		if ev.Kind == Start {
			c.acquireIdx = 0
			c.st = stateAcquireBoundary
		}
		// Discard anything else while awaiting Start, per spec.md §4.7 step 1.
		return Result{}, false

	case stateAcquireBoundary:
		if ev.Kind != Fringe {
			c.abort("fringe.abort", fmt.Sprintf("expected boundary fringe, got event kind %d", ev.Kind))
			return Result{}, false
		}
		c.b[c.acquireIdx] = ev.Position
		c.acquireIdx++
		if c.acquireIdx == 4 {
			c.fringesBetweenBoundary = 0
			c.st = stateCountBetween
		}
		return Result{}, false

	case stateCountBetween:
		switch ev.Kind {
		case Fringe:
			c.b[2] = c.b[3]
			c.b[3] = ev.Position
			c.fringesBetweenBoundary++
			return Result{}, false
		case Start:
			c.abort("fringe.abort", "unexpected Start while counting between boundary fringes")
			return Result{}, false
		case End:
			return c.finishPrimary()
		}
	}

	// stateAwaitSecondaryStart / stateSecondaryCount handled below.
	return c.feedSecondary(ev)
}

func (c *Counter) finishPrimary() (Result, bool) {
	if c.fringesBetweenBoundary < c.minFringes {
		c.abort("fringe.abort", fmt.Sprintf("only %d fringes between boundaries, need %d", c.fringesBetweenBoundary, c.minFringes))
		return Result{}, false
	}

	c.nominalDistance = c.b[1] - c.b[0]
	jitter := float64(c.nominalDistance) * c.fringeJitterTol
	if jitter < 0 {
		jitter = -jitter
	}
	c.jitterTol = jitter

	lo1, lo2 := (c.b[0]+c.b[1])/2, (c.b[2]+c.b[3])/2
	if lo1 < lo2 {
		c.limit1, c.limit2 = lo1, lo2
	} else {
		c.limit1, c.limit2 = lo2, lo1
	}

	c.expectedFringes = c.fringesBetweenBoundary + 2
	c.f1Acc = c.b[1]
	c.f2Acc = c.b[2]

	if c.decimation == 1 {
		return c.emit()
	}

	c.secondaryIdx = 0
	c.st = stateAwaitSecondaryStart
	return Result{}, false
}

func (c *Counter) feedSecondary(ev Event) (Result, bool) {
	switch c.st {
	case stateAwaitSecondaryStart:
		if ev.Kind != Start {
			// discard anything else while awaiting a secondary Start
			return Result{}, false
		}
		c.secondaryCount = 0
		c.haveLastKept = false
		c.st = stateSecondaryCount
		return Result{}, false

	case stateSecondaryCount:
		switch ev.Kind {
		case Fringe:
			withinWindow := ev.Position > c.limit1 && ev.Position < c.limit2
			if !withinWindow {
				return Result{}, false
			}
			if c.haveLastKept {
				dist := ev.Position - c.lastKept
				if dist < 0 {
					dist = -dist
				}
				delta := float64(dist) - float64(c.nominalDistance)
				if delta < 0 {
					delta = -delta
				}
				if delta > c.jitterTol {
					c.abort("fringe.abort", "fringe spacing jitter tolerance violated")
					return Result{}, false
				}
			} else {
				c.f1Acc += ev.Position
			}
			c.lastKept = ev.Position
			c.haveLastKept = true
			c.secondaryCount++
			return Result{}, false
		case Start:
			c.abort("fringe.abort", "unexpected Start during secondary acquisition")
			return Result{}, false
		case End:
			if c.secondaryCount != c.expectedFringes {
				c.abort("fringe.abort", fmt.Sprintf("fringe count mismatch: got %d, expected %d", c.secondaryCount, c.expectedFringes))
				return Result{}, false
			}
			c.f2Acc += c.lastKept
			c.secondaryIdx++
			if c.secondaryIdx == c.decimation-1 {
				return c.emit()
			}
			c.st = stateAwaitSecondaryStart
			return Result{}, false
		}
	}
	return Result{}, false
}

func (c *Counter) emit() (Result, bool) {
	f1Avg := c.f1Acc / c.decimation
	f2Avg := c.f2Acc / c.decimation
	diff := f2Avg - f1Avg
	if diff < 0 {
		diff = -diff
	}
	wavelength := diff / (c.expectedFringes - 1)

	result := Result{
		F1Avg:           f1Avg,
		F2Avg:           f2Avg,
		ExpectedFringes: c.expectedFringes,
		WavelengthUnits: wavelength,
	}
	c.resetToAwaitStart()
	return result, true
}
