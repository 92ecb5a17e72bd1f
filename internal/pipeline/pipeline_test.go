package pipeline

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noptica/internal/config"
	"noptica/internal/diag"
	"noptica/internal/report"
)

// byteSource feeds a fixed byte slice then reports io.EOF, so pipeline
// modes can be driven deterministically without spawning a shell.
type byteSource struct {
	data []byte
	pos  int
}

func (b *byteSource) ReadByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

func (b *byteSource) Close() error { return nil }

func baseConfig() *config.Config {
	c := &config.Config{
		SampleCommand:   "unused",
		SampleRate:      1_000_000,
		BitRef:          0,
		BitMeas:         1,
		BitInput:        2,
		RefMin:          100_000,
		RefMax:          200_000,
		RefPLLKi:        1 << 20,
		RefPLLKp:        1 << 24,
		RefWavelength:   633e-9,
		PositionMonTime: 0.0001,
		DutyCycle:       0.8,
		MinFringes:      1,
		FringeJitterTol: 0.5,
		Decimation:      1,
		Packing:         config.PackingByte,
	}
	t := true
	c.NibbleHighFirst = &t
	c.LockToleranceNum, c.LockToleranceDen = 4, 3
	c.LockDebounce = 1_000_000
	return c
}

func TestSimpleDMIStaysSilentUntilLock(t *testing.T) {
	cfg := baseConfig()
	src := &byteSource{data: []byte{0x00, 0x01, 0x02, 0x03}}
	rec := &report.Recorder{}
	collector := &diag.Collector{}

	d := New(cfg, src, rec, collector)
	err := d.SimpleDMI()
	require.NoError(t, err)

	// Far too few samples to reach the 1,000,000-edge lock debounce, so
	// no position should ever have been reported.
	assert.Empty(t, rec.Positions)
}

func TestCalibrateReturnsCleanlyOnEOF(t *testing.T) {
	cfg := baseConfig()
	src := &byteSource{data: []byte{0x00, 0x01}}
	rec := &report.Recorder{}

	d := New(cfg, src, rec, &diag.Collector{})
	assert.NoError(t, d.Calibrate())
}

type errSource struct{ err error }

func (e errSource) ReadByte() (byte, error) { return 0, e.err }
func (e errSource) Close() error            { return nil }

func TestWavemeterPropagatesSourceReadError(t *testing.T) {
	cfg := baseConfig()
	boom := assertErr("disk fell off")
	src := errSource{err: boom}
	rec := &report.Recorder{}

	d := New(cfg, src, rec, &diag.Collector{})
	err := d.Wavemeter()
	require.Error(t, err)
}

type assertErr string

func (a assertErr) Error() string { return string(a) }
