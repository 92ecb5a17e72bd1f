package motion

import "math"

// LowPass is a direct-form-II-transposed, second-order (biquad)
// Butterworth low-pass section, applied to the position signal before
// it feeds the envelope and quadrant tracker. Grounded on the
// coefficient-generation shape of the teacher's dsp.go filter-design
// routines (gen_lowpass et al.), adapted from an FIR windowed-sinc
// kernel to the single IIR section the original wavemeter.rs used
// (biquad::Type::LowPass / Q_BUTTERWORTH_F64), since the position
// signal here is a running accumulator rather than an audio buffer and
// an IIR section tracks it with no group-delay buffer to manage.
type LowPass struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64

	passthrough bool
}

const butterworthQ = 0.7071067811865476 // 1/sqrt(2)

// NewLowPass designs a Butterworth low-pass at cutoff Hz for a signal
// sampled at sampleRate Hz. A non-positive cutoff yields a passthrough
// filter, matching config's optional motion_cutoff field.
func NewLowPass(sampleRate, cutoff float64) *LowPass {
	if cutoff <= 0 || sampleRate <= 0 {
		return &LowPass{passthrough: true}
	}

	omega := 2 * math.Pi * cutoff / sampleRate
	sinOmega, cosOmega := math.Sin(omega), math.Cos(omega)
	alpha := sinOmega / (2 * butterworthQ)

	a0 := 1 + alpha
	b0 := ((1 - cosOmega) / 2) / a0
	b1 := (1 - cosOmega) / a0
	b2 := b0
	a1 := (-2 * cosOmega) / a0
	a2 := (1 - alpha) / a0

	return &LowPass{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

// Run filters one sample.
func (f *LowPass) Run(x float64) float64 {
	if f.passthrough {
		return x
	}
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}
