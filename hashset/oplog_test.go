package hashset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wave "github.com/wavefork/wave-verifier"
)

func TestOperationHistoryRecordsMutations(t *testing.T) {
	s := New(128, testOwner(1))

	_, err := s.Insert(testItem(1), 100)
	require.NoError(t, err)
	_, err = s.Insert(testItem(2), 200)
	require.NoError(t, err)
	_, err = s.Remove(testItem(1), 300)
	require.NoError(t, err)

	// A duplicate insert and a miss lookup leave no trace.
	_, err = s.Insert(testItem(2), 400)
	require.NoError(t, err)
	s.Contains(testItem(9))

	ops := s.OperationHistory()
	require.Len(t, ops, 3)
	assert.Equal(t, OpInsert, ops[0].Type)
	assert.Equal(t, testItem(1), ops[0].Item)
	assert.Equal(t, int64(100), ops[0].Timestamp)
	assert.Equal(t, OpInsert, ops[1].Type)
	assert.Equal(t, OpRemove, ops[2].Type)
	assert.Equal(t, testItem(1), ops[2].Item)
	assert.Equal(t, uint64(3), s.TotalOperations())
}

func TestCheckpointArchivesAndClears(t *testing.T) {
	s := New(128, testOwner(1))

	_, err := s.Insert(testItem(1), 100)
	require.NoError(t, err)
	_, err = s.Remove(testItem(1), 200)
	require.NoError(t, err)

	s.Checkpoint(300)

	// The checkpoint itself counts as an operation and is included in the
	// archived cursor.
	assert.Equal(t, uint64(3), s.TotalOperations())
	assert.Equal(t, uint64(3), s.LastCheckpoint())
	assert.Empty(t, s.OperationHistory())

	// Later mutations start a fresh window.
	_, err = s.Insert(testItem(2), 400)
	require.NoError(t, err)
	ops := s.OperationHistory()
	require.Len(t, ops, 1)
	assert.Equal(t, OpInsert, ops[0].Type)
	assert.Equal(t, uint64(4), s.TotalOperations())
	assert.Equal(t, uint64(3), s.LastCheckpoint())
}

func TestCheckpointDrainsActiveRollover(t *testing.T) {
	s := New(128, testOwner(1), WithIndexHash(firstByteHash))

	items := make([]wave.Value, BucketSize)
	for i := range items {
		items[i] = bucketTwoItem(i)
		_, err := s.Insert(items[i], int64(i))
		require.NoError(t, err)
	}
	require.True(t, s.RolloverActive())

	s.Checkpoint(1000)

	assert.False(t, s.RolloverActive())
	assert.Equal(t, uint32(1), s.RolloverCount())
	for _, item := range items {
		assert.True(t, s.Contains(item))
	}
	// 32 inserts, one rollover, one checkpoint.
	assert.Equal(t, uint64(34), s.TotalOperations())
	assert.Equal(t, uint64(34), s.LastCheckpoint())
	assert.Empty(t, s.OperationHistory())
}

func TestRolloverLogsSingleEntry(t *testing.T) {
	s := New(128, testOwner(1), WithIndexHash(firstByteHash))

	for i := 0; i < BucketSize; i++ {
		_, err := s.Insert(bucketTwoItem(i), int64(i))
		require.NoError(t, err)
	}
	s.ProcessRollover(500)

	ops := s.OperationHistory()
	require.Len(t, ops, BucketSize+1)
	last := ops[len(ops)-1]
	assert.Equal(t, OpRollover, last.Type)
	assert.Equal(t, int64(500), last.Timestamp)
	assert.True(t, last.Item.IsZero())
}

func TestOpTypeString(t *testing.T) {
	assert.Equal(t, "insert", OpInsert.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "rollover", OpRollover.String())
	assert.Equal(t, "checkpoint", OpCheckpoint.String())
	assert.Equal(t, "unknown", OpType(9).String())
}
