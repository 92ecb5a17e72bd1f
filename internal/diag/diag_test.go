package diag

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsInOrder(t *testing.T) {
	c := &Collector{}
	c.Report("dpll.lock", "locked")
	c.Report("quadrant.transition", "bad jump")

	require.Len(t, c.Events, 2)
	assert.Equal(t, "dpll.lock", c.Events[0].Kind)
	assert.Equal(t, "quadrant.transition", c.Events[1].Kind)
}

func TestDiscardDoesNothing(t *testing.T) {
	assert.NotPanics(t, func() { Discard{}.Report("x", "y") })
}

func TestCSVSinkWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.csv")

	sink, err := NewCSVSink(path, "")
	require.NoError(t, err)
	sink.Report("fringe.abort", "insufficient fringes")
	require.NoError(t, sink.Close())

	sink2, err := NewCSVSink(path, "")
	require.NoError(t, err)
	sink2.Report("dpll.unlock", "lost lock")
	require.NoError(t, sink2.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 rows
	assert.Equal(t, []string{"timestamp", "kind", "detail"}, rows[0])
	assert.Equal(t, "fringe.abort", rows[1][1])
	assert.Equal(t, "dpll.unlock", rows[2][1])
}
