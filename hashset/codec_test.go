package hashset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wave "github.com/wavefork/wave-verifier"
)

// populatedSet builds a set carrying items, log entries and an active
// rollover episode so round trips cover every record section.
func populatedSet(t *testing.T) *Set {
	t.Helper()
	s := New(128, testOwner(7), WithIndexHash(firstByteHash), WithCreatedAt(50))
	for i := 0; i < BucketSize; i++ {
		ok, err := s.Insert(bucketTwoItem(i), int64(100+i))
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.True(t, s.RolloverActive())
	_, err := s.Insert(testItem(1), 200)
	require.NoError(t, err)
	_, err = s.Remove(testItem(1), 201)
	require.NoError(t, err)
	return s
}

func TestSetRoundTrip(t *testing.T) {
	s := populatedSet(t)
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got, err := UnmarshalBinary(data, WithIndexHash(firstByteHash))
	require.NoError(t, err)

	assert.Equal(t, s.Capacity(), got.Capacity())
	assert.Equal(t, s.Len(), got.Len())
	assert.Equal(t, s.Metadata(), got.Metadata())
	assert.Equal(t, s.Stats(), got.Stats())
	assert.Equal(t, s.OperationHistory(), got.OperationHistory())
	assert.Equal(t, s.StagedItems(), got.StagedItems())
	assert.True(t, got.RolloverActive())

	// The restored set keeps operating: draining the episode makes the
	// staged items visible again.
	got.ProcessRollover(900)
	for i := 0; i < BucketSize; i++ {
		assert.True(t, got.Contains(bucketTwoItem(i)))
	}
	assert.Equal(t, uint32(1), got.RolloverCount())
}

func TestSetMarshalIsDeterministic(t *testing.T) {
	s := populatedSet(t)
	a, err := s.MarshalBinary()
	require.NoError(t, err)
	b, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSetRoundTripFrozen(t *testing.T) {
	s := New(64, testOwner(3))
	_, err := s.Insert(testItem(1), 10)
	require.NoError(t, err)
	s.Freeze()

	data, err := s.MarshalBinary()
	require.NoError(t, err)
	got, err := UnmarshalBinary(data)
	require.NoError(t, err)

	assert.True(t, got.Frozen())
	_, err = got.Insert(testItem(2), 20)
	require.ErrorIs(t, err, wave.ErrFrozenOrFinalized)
	assert.True(t, got.Contains(testItem(1)))
}

func TestUnmarshalRejectsCorruptRecords(t *testing.T) {
	s := populatedSet(t)
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		_, err := UnmarshalBinary(data[:len(data)/2])
		require.ErrorIs(t, err, wave.ErrMalformed)
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xff
		_, err := UnmarshalBinary(bad)
		require.ErrorIs(t, err, wave.ErrMalformed)
	})

	t.Run("future version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] = FormatVersion + 1
		_, err := UnmarshalBinary(bad)
		require.ErrorIs(t, err, wave.ErrMalformed)
	})

	t.Run("reserved bytes", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[6] = 1
		_, err := UnmarshalBinary(bad)
		require.ErrorIs(t, err, wave.ErrMalformed)
	})

	t.Run("tree record", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		copy(bad, "WMT1")
		_, err := UnmarshalBinary(bad)
		require.ErrorIs(t, err, wave.ErrMalformed)
	})
}
