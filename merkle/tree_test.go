package merkle

import (
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wave "github.com/wavefork/wave-verifier"
)

func testLeaf(b byte) wave.Value {
	var v wave.Value
	v[0] = b
	return v
}

func testOwner(b byte) wave.Owner {
	var o wave.Owner
	o[0] = b
	return o
}

// newTaggedSHA is a second pair hash for plugability tests: sha256 with a
// fixed domain prefix, so digests differ from plain sha256.
func newTaggedSHA() hash.Hash {
	h := sha256.New()
	h.Write([]byte("wave-test-domain"))
	return h
}

func TestNewRejectsExcessiveDepth(t *testing.T) {
	_, err := New(MaxDepth+1, 32, testOwner(1))
	require.ErrorIs(t, err, wave.ErrInvalidArgument)

	tr, err := New(3, 32, testOwner(1))
	require.NoError(t, err)
	assert.Equal(t, uint8(3), tr.Depth())
	assert.Equal(t, uint64(8), tr.Capacity())
	assert.Equal(t, uint64(0), tr.LeafCount())
	assert.True(t, tr.Root().IsZero())
}

func TestInsertUpdatesRoot(t *testing.T) {
	tr, err := New(2, 32, testOwner(1))
	require.NoError(t, err)

	l0, l1 := testLeaf(1), testLeaf(2)

	idx, err := tr.Insert(l0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx)

	idx, err = tr.Insert(l1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)

	// Recompute the depth 2 root by hand: the two right hand leaves are the
	// zero value.
	h := func(a, b wave.Value) wave.Value {
		hh := sha256.New()
		hh.Write(a[:])
		hh.Write(b[:])
		var out wave.Value
		copy(out[:], hh.Sum(nil))
		return out
	}
	var zero wave.Value
	want := h(h(l0, l1), h(zero, zero))
	assert.Equal(t, want, tr.Root())
}

func TestInsertFailsWhenFull(t *testing.T) {
	tr, err := New(1, 32, testOwner(1))
	require.NoError(t, err)

	_, err = tr.Insert(testLeaf(1))
	require.NoError(t, err)
	_, err = tr.Insert(testLeaf(2))
	require.NoError(t, err)

	_, err = tr.Insert(testLeaf(3))
	require.ErrorIs(t, err, wave.ErrCapacityExceeded)
	assert.Equal(t, uint64(2), tr.LeafCount())
}

func TestFinalizeBlocksNewBatches(t *testing.T) {
	tr, err := New(3, 32, testOwner(1))
	require.NoError(t, err)

	seq, err := tr.CreateBatch([]wave.Value{testLeaf(1)}, testOwner(2), ClassStandard, 100)
	require.NoError(t, err)

	// Finalize must fail while the batch is still pending.
	require.ErrorIs(t, tr.Finalize(), wave.ErrInvalidArgument)

	_, ok, err := tr.ProcessNextBatch()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, tr.Finalize())
	assert.True(t, tr.Finalized())

	_, err = tr.CreateBatch([]wave.Value{testLeaf(2)}, testOwner(2), ClassStandard, 101)
	require.ErrorIs(t, err, wave.ErrFrozenOrFinalized)

	// The processed archive is untouched by finalization.
	status, found := tr.BatchStatus(seq)
	require.True(t, found)
	assert.Equal(t, BatchCompleted, status)
}

func TestCustomPairHash(t *testing.T) {
	// A tree built with a different pair hash must produce a different root
	// for the same leaves, and verify only with matching parameters.
	trA, err := New(2, 32, testOwner(1))
	require.NoError(t, err)
	trB, err := New(2, 32, testOwner(1), WithPairHash(newTaggedSHA))
	require.NoError(t, err)

	for i := byte(0); i < 3; i++ {
		_, err = trA.Insert(testLeaf(i))
		require.NoError(t, err)
		_, err = trB.Insert(testLeaf(i))
		require.NoError(t, err)
	}
	assert.NotEqual(t, trA.Root(), trB.Root())

	proof, err := trB.Proof(1)
	require.NoError(t, err)
	assert.True(t, trB.Verify(testLeaf(1), proof, 1))
	assert.False(t, trA.Verify(testLeaf(1), proof, 1))
}
