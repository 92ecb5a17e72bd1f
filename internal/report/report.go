// Package report formats pipeline output as the newline-terminated
// decimal text lines spec.md §6 specifies, kept separate from the
// pipeline driver so tests can swap in a recording Sink.
package report

import (
	"fmt"
	"io"
)

// Sink receives one scalar pipeline result at a time.
type Sink interface {
	Position(value int64)
	Wavelength(meters float64)
	Calibration(meters float64)
}

// Writer is the default Sink, writing plain decimal lines to w.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w (typically os.Stdout).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (r *Writer) Position(value int64) {
	fmt.Fprintln(r.w, value)
}

func (r *Writer) Wavelength(meters float64) {
	fmt.Fprintf(r.w, "%.9g\n", meters)
}

func (r *Writer) Calibration(meters float64) {
	fmt.Fprintf(r.w, "%.1f um\n", meters*1.0e6)
}

// Recorder is a test Sink that remembers every call.
type Recorder struct {
	Positions    []int64
	Wavelengths  []float64
	Calibrations []float64
}

func (r *Recorder) Position(value int64)      { r.Positions = append(r.Positions, value) }
func (r *Recorder) Wavelength(meters float64) { r.Wavelengths = append(r.Wavelengths, meters) }
func (r *Recorder) Calibration(meters float64) {
	r.Calibrations = append(r.Calibrations, meters)
}
