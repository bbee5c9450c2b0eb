package merkle

import (
	"fmt"
	"hash"

	wave "github.com/wavefork/wave-verifier"
)

// Proof returns the depth sibling hashes proving the leaf at index, ordered
// from the leaf level up. Unwritten leaf slots cannot be proven.
func (t *Tree) Proof(index uint64) ([]wave.Value, error) {
	if index >= t.leafCount {
		return nil, fmt.Errorf("%w: leaf %d not written (leaf count %d)", wave.ErrInvalidArgument, index, t.leafCount)
	}

	proof := make([]wave.Value, 0, t.depth)
	node := t.leafNodeIndex(index)
	for node > 0 {
		proof = append(proof, t.nodes[siblingIndex(node)])
		node = (node - 1) / 2
	}
	return proof, nil
}

// siblingIndex returns the other child of node's parent. Even flat indices
// are right children, odd are left.
func siblingIndex(node uint64) uint64 {
	if node%2 == 0 {
		return node - 1
	}
	return node + 1
}

// Verify recomputes the root from leaf and proof and compares it with the
// stored root. A proof whose length differs from the tree depth is rejected
// outright.
func (t *Tree) Verify(leaf wave.Value, proof []wave.Value, index uint64) bool {
	if len(proof) != int(t.depth) {
		return false
	}
	return VerifyAgainstRoot(t.newHash, t.Root(), t.depth, leaf, proof, index)
}

// VerifyAgainstRoot checks an inclusion proof against an externally held
// root, for callers that hold only the commitment and not the tree itself.
// newHash must match the pair hash the tree was built with.
func VerifyAgainstRoot(newHash func() hash.Hash, root wave.Value, depth uint8, leaf wave.Value, proof []wave.Value, index uint64) bool {
	if len(proof) != int(depth) {
		return false
	}
	if index >= uint64(1)<<depth {
		return false
	}

	current := leaf
	node := (uint64(1) << depth) - 1 + index
	for _, sibling := range proof {
		// An even flat index is a right child: the sibling hashes first.
		if node%2 == 0 {
			current = hashPairWith(newHash, sibling, current)
		} else {
			current = hashPairWith(newHash, current, sibling)
		}
		node = (node - 1) / 2
	}
	return current == root
}

func hashPairWith(newHash func() hash.Hash, left, right wave.Value) wave.Value {
	h := newHash()
	h.Write(left[:])
	h.Write(right[:])
	var out wave.Value
	copy(out[:], h.Sum(nil))
	return out
}
