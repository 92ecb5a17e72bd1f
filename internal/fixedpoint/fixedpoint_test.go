package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFrequencyToFTWRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sampleRate := rapid.Float64Range(1e6, 1e9).Draw(t, "sampleRate")
		freq := rapid.Float64Range(0, sampleRate/2).Draw(t, "freq")

		ftw := FrequencyToFTW(freq, sampleRate)
		back := FTWToFrequency(ftw, sampleRate)

		ulp := sampleRate / float64(Turn)
		assert.InDelta(t, freq, back, ulp+1e-9)
	})
}

func TestClamp64(t *testing.T) {
	assert.Equal(t, int64(5), Clamp64(5, 0, 10))
	assert.Equal(t, int64(0), Clamp64(-5, 0, 10))
	assert.Equal(t, int64(10), Clamp64(15, 0, 10))
}

func TestWrappingArithmeticOverflows(t *testing.T) {
	var max int64 = 1<<63 - 1
	assert.Equal(t, max+1, WrappingAdd(max, 1))
}
