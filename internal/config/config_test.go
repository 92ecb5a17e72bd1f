package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
sample_command: "logic-analyzer --stream"
sample_rate: 1.0e8
bit_ref: 0
bit_meas: 1
bit_input: 2
ref_min: 1.0e6
ref_max: 3.0e6
refpll_ki: 4096
refpll_kp: 65536
ref_wavelength: 6.33e-7
position_mon_time: 0.1
duty_cycle: 0.8
min_fringes: 3
fringe_jitter_tol: 0.1
decimation: 4
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wavemeter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadValidConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, validYAML)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, PackingNibble, c.Packing)
	assert.True(t, *c.NibbleHighFirst)
	assert.Equal(t, int64(4), c.LockToleranceNum)
	assert.Equal(t, int64(3), c.LockToleranceDen)
	assert.Equal(t, int64(1_000_000), c.LockDebounce)
}

func TestMissingSampleCommandFailsValidation(t *testing.T) {
	path := writeConfig(t, `
sample_rate: 1.0e8
bit_ref: 0
bit_meas: 1
bit_input: 2
ref_min: 1.0e6
ref_max: 3.0e6
duty_cycle: 0.8
min_fringes: 3
decimation: 1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDuplicateBitsRejected(t *testing.T) {
	c := Config{
		SourceKind:    SourceCommand,
		SampleCommand: "x", SampleRate: 1e8,
		BitRef: 0, BitMeas: 0, BitInput: 1,
		RefMin: 1e6, RefMax: 3e6,
		DutyCycle: 1, MinFringes: 1, Decimation: 1,
	}
	assert.Error(t, c.Validate())
}

func TestGPIOSourceRequiresChipAndThreeOffsets(t *testing.T) {
	c := Config{
		SourceKind: SourceGPIO,
		Packing:    PackingNibble,
		SampleRate: 1e8,
		BitRef:     0, BitMeas: 1, BitInput: 2,
		RefMin: 1e6, RefMax: 3e6,
		DutyCycle: 1, MinFringes: 1, Decimation: 1,
	}
	assert.Error(t, c.Validate(), "missing gpio_chip and gpio_offsets")

	c.GPIOChip = "gpiochip0"
	c.GPIOOffsets = []int{17, 27}
	assert.Error(t, c.Validate(), "only 2 offsets given, need 3")

	c.GPIOOffsets = []int{17, 27, 22}
	assert.NoError(t, c.Validate())
}

func TestNonexistentFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
