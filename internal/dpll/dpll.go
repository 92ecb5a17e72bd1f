// Package dpll implements the software digital phase-locked loop that
// tracks the reference laser's beat signal. Grounded on
// original_source/src/noptica.rs's Dpll, extended with the lock/debounce
// state machine and tunables noptica.rs's later wavemeter.rs revisions
// added (spec.md §4.2) and with diagnostics reported through an
// injected sink rather than an unconditional stderr print.
package dpll

import (
	"fmt"

	"noptica/internal/diag"
	"noptica/internal/fixedpoint"
)

const lockSentinel = -1

// Dpll is a second-order (integral + proportional) digital PLL locking
// an NCO to the rising edges of a reference square wave.
type Dpll struct {
	ftwMin, ftwMax int64
	ki, kp         int64

	ftw         int64
	integrator  int64
	phase       int64 // 0 <= phase < Turn
	phaseUnwrap int64

	lockToleranceNum int64
	lockToleranceDen int64
	lockDebounce     int64
	waitLock         int64 // lockSentinel once locked

	diagnostics diag.Sink
}

// Option customizes a Dpll at construction time.
type Option func(*Dpll)

// WithLockTolerance overrides the default locking band of
// |pe| <= ftw + ftw/3 (i.e. num=4, den=3 meaning |pe| <= ftw*num/den).
func WithLockTolerance(num, den int64) Option {
	return func(d *Dpll) {
		d.lockToleranceNum = num
		d.lockToleranceDen = den
	}
}

// WithLockDebounce overrides the default 1,000,000-edge debounce count.
func WithLockDebounce(edges int64) Option {
	return func(d *Dpll) { d.lockDebounce = edges }
}

// WithDiagnostics routes lock/unlock transitions to sink instead of
// diag.Discard{}.
func WithDiagnostics(sink diag.Sink) Option {
	return func(d *Dpll) { d.diagnostics = sink }
}

// New builds a Dpll clamped to [ftwMin, ftwMax], seeded at the midpoint,
// per spec.md §3's lifecycle invariant.
func New(ftwMin, ftwMax, ki, kp int64, opts ...Option) *Dpll {
	if ftwMin < 0 || ftwMax >= fixedpoint.Turn/2 || ftwMin > ftwMax {
		panic("dpll: ftw bounds must satisfy 0 <= ftw_min <= ftw_max < Turn/2")
	}
	init := (ftwMin + ftwMax) / 2
	d := &Dpll{
		ftwMin:           ftwMin,
		ftwMax:           ftwMax,
		ki:               ki,
		kp:               kp,
		ftw:              init,
		integrator:       init,
		lockToleranceNum: 4,
		lockToleranceDen: 3,
		lockDebounce:     1_000_000,
		diagnostics:      diag.Discard{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FrequencyToFTW converts a reference-frequency bound to an FTW for
// DPLL construction.
func FrequencyToFTW(frequency, sampleRate float64) int64 {
	return fixedpoint.FrequencyToFTW(frequency, sampleRate)
}

// Tick advances the NCO by one sample and, on edge, updates the loop
// filter and lock detector.
func (d *Dpll) Tick(edge bool) {
	d.phase = (d.phase + d.ftw) & (fixedpoint.Turn - 1)
	d.phaseUnwrap = fixedpoint.WrappingAdd(d.phaseUnwrap, d.ftw)

	if !edge {
		return
	}

	pe := fixedpoint.Turn/2 - d.phase
	d.integrator = fixedpoint.Clamp64(d.integrator+((pe*d.ki)>>32), d.ftwMin, d.ftwMax)
	d.ftw = fixedpoint.Clamp64(d.integrator+((pe*d.kp)>>32), d.ftwMin, d.ftwMax)

	tolerance := (d.ftw * d.lockToleranceNum) / d.lockToleranceDen
	inRange := pe >= -tolerance && pe <= tolerance

	wasLocked := d.Locked()
	if inRange {
		if d.waitLock != lockSentinel {
			d.waitLock++
			if d.waitLock >= d.lockDebounce {
				d.waitLock = lockSentinel
			}
		}
	} else {
		d.waitLock = 0
	}

	if locked := d.Locked(); locked != wasLocked {
		if locked {
			d.diagnostics.Report("dpll.lock", "reference DPLL locked")
		} else {
			d.diagnostics.Report("dpll.unlock", fmt.Sprintf("reference DPLL lost lock, pe=%d ftw=%d", pe, d.ftw))
		}
	}
}

// Locked reports whether the loop has stayed within tolerance for the
// configured debounce count of consecutive edges.
func (d *Dpll) Locked() bool { return d.waitLock == lockSentinel }

// Phase returns the wrapped NCO phase in [0, Turn).
func (d *Dpll) Phase() int64 { return d.phase }

// PhaseUnwrapped returns the running, wraparound sum of every FTW
// applied since construction.
func (d *Dpll) PhaseUnwrapped() int64 { return d.phaseUnwrap }

// FTW returns the loop filter's current frequency tuning word.
func (d *Dpll) FTW() int64 { return d.ftw }

// Integrator exposes the clamped integrator state, for invariant tests.
func (d *Dpll) Integrator() int64 { return d.integrator }
