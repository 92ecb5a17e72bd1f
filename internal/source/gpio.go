// GPIOSource is an alternate Source that reads the REF/MEAS/INPUT
// signals directly off Linux GPIO character-device lines instead of
// spawning an external logic-analyzer process, for setups where the
// host itself has the comparator outputs wired to GPIO pins. Grounded
// on github.com/warthog618/go-gpiocdev, which the teacher repo declares
// in its go.mod without importing it (its src/ptt.go GPIO path is a cgo
// binding); it is used here for its bulk-line read API.
package source

import (
	"fmt"
	"io"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOSource polls a fixed set of input lines on every call to
// ReadByte, packing their levels into the low bits of the returned
// sample byte in the order the lines were requested.
type GPIOSource struct {
	lines *gpiocdev.Lines
	width int
}

// NewGPIOSource opens chip (e.g. "gpiochip0") and requests offsets as
// inputs. Sampling cadence is driven entirely by how fast the caller
// invokes ReadByte; there is no internal clock, matching this package's
// single suspension-point model (spec.md §5).
func NewGPIOSource(chip string, offsets []int) (*GPIOSource, error) {
	if len(offsets) == 0 || len(offsets) > 8 {
		return nil, fmt.Errorf("source: gpio needs 1-8 offsets, got %d", len(offsets))
	}
	lines, err := gpiocdev.RequestLines(chip, offsets, gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("source: requesting gpio lines on %s: %w", chip, err)
	}
	return &GPIOSource{lines: lines, width: len(offsets)}, nil
}

// ReadByte samples every configured line once and packs them LSB-first
// into the returned byte.
func (g *GPIOSource) ReadByte() (byte, error) {
	values := make([]int, g.width)
	if err := g.lines.Values(values); err != nil {
		return 0, fmt.Errorf("source: gpio read: %w", err)
	}
	var b byte
	for i, v := range values {
		if v != 0 {
			b |= 1 << uint(i)
		}
	}
	return b, nil
}

// Close releases the GPIO line handles. GPIO lines never hit EOF on
// their own; callers stop by cancelling the pipeline loop instead.
func (g *GPIOSource) Close() error {
	return g.lines.Close()
}

var _ Source = (*GPIOSource)(nil)
var _ io.Closer = (*GPIOSource)(nil)
