// Package motion provides sub-sample-accurate position extrapolation
// between sparse MEAS edges, plus the optional IIR motion low-pass,
// per spec.md §4.5.
package motion

// Extrapolator linearly predicts position between MEAS edges using the
// speed observed over the most recent inter-edge interval.
type Extrapolator struct {
	lastPosition int64
	speed        int64
	samplesSince uint32
}

// New returns a zeroed Extrapolator.
func New() *Extrapolator {
	return &Extrapolator{}
}

// Tick advances one sample. Pass the new MEAS position on a MEAS edge,
// or nil otherwise.
func (e *Extrapolator) Tick(position *int64) {
	e.samplesSince++
	if position == nil {
		return
	}
	// samplesSince >= 1 here, so the division below never sees zero.
	e.speed = (*position - e.lastPosition) / int64(e.samplesSince)
	e.lastPosition = *position
	e.samplesSince = 0
}

// ExtrapolatedPosition predicts the current position from the last
// observed MEAS edge and the samples elapsed since.
func (e *Extrapolator) ExtrapolatedPosition() int64 {
	return e.lastPosition + e.speed*int64(e.samplesSince)
}
