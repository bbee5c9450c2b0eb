package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingTracksBytes(t *testing.T) {
	inner, err := ForAlgorithm(Snappy)
	require.NoError(t, err)
	c := NewCounting(inner)
	assert.Equal(t, Snappy, c.Algorithm())
	assert.Equal(t, float64(1), c.Stats().Ratio())

	payload := bytes.Repeat([]byte("abcd"), 256)
	packed, err := c.Compress(payload)
	require.NoError(t, err)

	got, err := c.Decompress(packed, len(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Compressions)
	assert.Equal(t, uint64(1), stats.Decompressions)
	assert.Equal(t, uint64(len(payload)), stats.BytesIn)
	assert.Equal(t, uint64(len(packed)), stats.BytesOut)
	assert.Less(t, stats.Ratio(), 1.0)
}

func TestCountingSkipsFailures(t *testing.T) {
	inner, err := ForAlgorithm(Snappy)
	require.NoError(t, err)
	c := NewCounting(inner)

	_, err = c.Decompress([]byte{0xde, 0xad}, 8)
	require.Error(t, err)
	assert.Equal(t, uint64(0), c.Stats().Decompressions)
}
