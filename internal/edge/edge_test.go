package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectorFirstSampleRisesEverySetBit(t *testing.T) {
	d := NewDetector(Width8)
	rising, falling := d.Tick(0b1010)
	assert.Equal(t, byte(0b1010), rising)
	assert.Equal(t, byte(0), falling)
}

func TestDetectorTracksRisingAndFalling(t *testing.T) {
	d := NewDetector(Width8)
	d.Tick(0b0001)
	rising, falling := d.Tick(0b0011)
	assert.Equal(t, byte(0b0010), rising)
	assert.Equal(t, byte(0), falling)

	rising, falling = d.Tick(0b0010)
	assert.Equal(t, byte(0), rising)
	assert.Equal(t, byte(0b0001), falling)
}

func TestDetectorMasksToWidth(t *testing.T) {
	d := NewDetector(Width4)
	rising, _ := d.Tick(0xff)
	assert.Equal(t, byte(0x0f), rising)
}

func TestNibbleSplitterHighFirst(t *testing.T) {
	s := NewNibbleSplitter(Width4, true)
	assert.Equal(t, []byte{0x0a, 0x0b}, s.Split(0xab))
}

func TestNibbleSplitterLowFirst(t *testing.T) {
	s := NewNibbleSplitter(Width4, false)
	assert.Equal(t, []byte{0x0b, 0x0a}, s.Split(0xab))
}

func TestNibbleSplitterByteWidthIsIdentity(t *testing.T) {
	s := NewNibbleSplitter(Width8, true)
	assert.Equal(t, []byte{0xab}, s.Split(0xab))
}
