package source

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSourceStreamsBytesThenEOF(t *testing.T) {
	src, err := NewCommandSource(`printf '\001\002\003'`)
	require.NoError(t, err)
	defer src.Close()

	var got []byte
	for {
		b, err := src.ReadByte()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
}

func TestCommandSourceCloseWaitsForExit(t *testing.T) {
	src, err := NewCommandSource(`printf 'x'`)
	require.NoError(t, err)
	_, _ = src.ReadByte()
	assert.NoError(t, src.Close())
}
