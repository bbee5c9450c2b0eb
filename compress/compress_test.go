package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wave "github.com/wavefork/wave-verifier"
)

func TestRoundTripAllAlgorithms(t *testing.T) {
	// Repetitive payloads so the real codecs actually shrink something.
	payload := bytes.Repeat([]byte("commitment batch record "), 64)

	for _, alg := range []Algorithm{None, Snappy, Zstd} {
		t.Run(alg.String(), func(t *testing.T) {
			c, err := ForAlgorithm(alg)
			require.NoError(t, err)
			assert.Equal(t, alg, c.Algorithm())

			packed, err := c.Compress(payload)
			require.NoError(t, err)
			if alg != None {
				assert.Less(t, len(packed), len(payload))
			}

			got, err := c.Decompress(packed, len(payload))
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestRoundTripEmptyAndSmall(t *testing.T) {
	for _, alg := range []Algorithm{None, Snappy, Zstd} {
		c, err := ForAlgorithm(alg)
		require.NoError(t, err)
		for _, payload := range [][]byte{{}, {0x42}} {
			packed, err := c.Compress(payload)
			require.NoError(t, err)
			got, err := c.Decompress(packed, len(payload))
			require.NoError(t, err)
			assert.Equal(t, len(payload), len(got))
			assert.Equal(t, []byte(payload), got[:len(payload):len(payload)])
		}
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	for _, alg := range []Algorithm{Snappy, Zstd} {
		t.Run(alg.String(), func(t *testing.T) {
			c, err := ForAlgorithm(alg)
			require.NoError(t, err)
			_, err = c.Decompress(garbage, 16)
			require.ErrorIs(t, err, wave.ErrMalformed)
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	for name, want := range map[string]Algorithm{
		"":       None,
		"none":   None,
		"snappy": Snappy,
		"zstd":   Zstd,
	} {
		got, err := ParseAlgorithm(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseAlgorithm("lz4")
	require.ErrorIs(t, err, wave.ErrInvalidArgument)

	assert.Equal(t, "algorithm(9)", Algorithm(9).String())
}

func TestForAlgorithmRejectsUnknownTag(t *testing.T) {
	_, err := ForAlgorithm(Algorithm(200))
	require.ErrorIs(t, err, wave.ErrInvalidArgument)
}
