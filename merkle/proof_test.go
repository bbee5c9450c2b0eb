package merkle

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wave "github.com/wavefork/wave-verifier"
)

// Every written leaf must verify immediately after its insertion and again
// after any number of later insertions, against a freshly fetched proof.
func TestProofsStayValidAsTreeGrows(t *testing.T) {
	const depth = 4
	tr, err := New(depth, 32, testOwner(1))
	require.NoError(t, err)

	leaves := make([]wave.Value, tr.Capacity())
	for i := range leaves {
		leaves[i] = testLeaf(byte(i + 1))
		_, err := tr.Insert(leaves[i])
		require.NoError(t, err)

		for j := 0; j <= i; j++ {
			proof, err := tr.Proof(uint64(j))
			require.NoError(t, err)
			require.Len(t, proof, depth)
			assert.True(t, tr.Verify(leaves[j], proof, uint64(j)),
				"leaf %d must verify with %d leaves committed", j, i+1)
		}
	}
}

func TestProofRejectsUnwrittenIndex(t *testing.T) {
	tr, err := New(3, 32, testOwner(1))
	require.NoError(t, err)
	_, err = tr.Insert(testLeaf(1))
	require.NoError(t, err)

	_, err = tr.Proof(1)
	require.ErrorIs(t, err, wave.ErrInvalidArgument)
}

func TestVerifyRejectsBadProofs(t *testing.T) {
	tr, err := New(3, 32, testOwner(1))
	require.NoError(t, err)
	for i := byte(0); i < 5; i++ {
		_, err := tr.Insert(testLeaf(i + 1))
		require.NoError(t, err)
	}

	proof, err := tr.Proof(2)
	require.NoError(t, err)
	require.True(t, tr.Verify(testLeaf(3), proof, 2))

	// Wrong length.
	assert.False(t, tr.Verify(testLeaf(3), proof[:2], 2))
	assert.False(t, tr.Verify(testLeaf(3), append(proof, wave.Value{}), 2))

	// Any altered bit invalidates the proof.
	for i := range proof {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]wave.Value(nil), proof...)
			tampered[i][0] ^= 1 << bit
			assert.False(t, tr.Verify(testLeaf(3), tampered, 2))
		}
	}

	// Wrong leaf, wrong index, unwritten slot.
	assert.False(t, tr.Verify(testLeaf(4), proof, 2))
	assert.False(t, tr.Verify(testLeaf(3), proof, 3))
	assert.False(t, tr.Verify(testLeaf(3), proof, 7))
}

func TestVerifyAgainstRootMatchesTreeVerify(t *testing.T) {
	tr, err := New(3, 32, testOwner(1))
	require.NoError(t, err)
	for i := byte(0); i < 6; i++ {
		_, err := tr.Insert(testLeaf(i + 1))
		require.NoError(t, err)
	}

	proof, err := tr.Proof(4)
	require.NoError(t, err)

	root := tr.Root()
	assert.True(t, VerifyAgainstRoot(sha256.New, root, 3, testLeaf(5), proof, 4))
	assert.False(t, VerifyAgainstRoot(sha256.New, root, 3, testLeaf(5), proof, 5))
	assert.False(t, VerifyAgainstRoot(sha256.New, wave.Value{}, 3, testLeaf(5), proof, 4))
	// An index past the leaf range can never verify.
	assert.False(t, VerifyAgainstRoot(sha256.New, root, 3, testLeaf(5), proof, 8))
}

// The worked depth 3 example: three direct inserts, then a two leaf priority
// batch processed through the queue.
func TestDepthThreeWorkedExample(t *testing.T) {
	tr, err := New(3, 32, testOwner(1))
	require.NoError(t, err)

	l := make([]wave.Value, 5)
	for i := range l {
		l[i] = testLeaf(byte(i + 10))
	}
	for i := 0; i < 3; i++ {
		_, err := tr.Insert(l[i])
		require.NoError(t, err)
	}

	seq, err := tr.CreateBatch([]wave.Value{l[3], l[4]}, testOwner(2), ClassPriority, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	got, ok, err := tr.ProcessNextBatch()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), got)
	assert.Equal(t, uint64(5), tr.LeafCount())

	proof, err := tr.Proof(0)
	require.NoError(t, err)
	assert.Len(t, proof, 3)
	assert.True(t, tr.Verify(l[0], proof, 0))
	assert.False(t, tr.Verify(l[0], proof, 1))
}
