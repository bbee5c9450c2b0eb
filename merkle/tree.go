// Package merkle maintains a compact commitment over an append only sequence
// of 32 byte leaves admitted in scheduled batches.
//
// The tree is a fixed depth binary tree stored as one flat arena of
// 2^(depth+1)-1 nodes addressed purely by integer index: node 0 is the root,
// the children of i are 2i+1 and 2i+2, the parent of i is (i-1)/2, and leaves
// occupy the final 2^depth slots. Inserting a leaf writes its slot and
// recomputes the ancestor hashes up to the root, so every call costs O(depth)
// regardless of how many leaves are already committed.
package merkle

import (
	"crypto/sha256"
	"fmt"
	"hash"

	wave "github.com/wavefork/wave-verifier"
)

const (
	// MaxDepth bounds tree construction. A depth 32 tree already commits to
	// 2^32 leaves; anything deeper cannot be honoured inside the fixed
	// allocation budget.
	MaxDepth = 32

	// MaxBatchSize bounds the leaf count of a single batch.
	MaxBatchSize = 1024

	// FormatVersion is the persisted record layout version written by
	// MarshalBinary.
	FormatVersion = 1
)

// Metadata is the administrative block persisted with every tree instance.
type Metadata struct {
	CreatedAt    int64
	LastModified int64
	Owner        wave.Owner
	Finalized    bool
	MaxLeafSize  uint32
	Compression  bool
	Version      uint8
}

// Tree is a flat array backed commitment tree with an attached batch queue
// and processed batch archive. It owns all of its state; nothing is shared
// with other instances and no locks or background work exist. The caller
// serializes access.
type Tree struct {
	depth     uint8
	leafCount uint64
	nodes     []wave.Value
	meta      Metadata

	// pending is strictly FIFO. Batch priority class is metadata only and
	// never reorders it.
	pending   []*Batch
	processed map[uint64]*Batch

	newHash func() hash.Hash
}

// Option adjusts tree construction.
type Option func(*Tree)

// WithPairHash replaces the hash used for parent node computation. The
// function must produce 32 byte digests and be collision resistant; it is
// intentionally distinct from the fast bucket index hash used by the set.
func WithPairHash(newHash func() hash.Hash) Option {
	return func(t *Tree) { t.newHash = newHash }
}

// WithCompression records that record bytes for this instance are compressed
// by the surrounding layer. The flag is persisted metadata only; the tree
// itself never compresses anything.
func WithCompression(enabled bool) Option {
	return func(t *Tree) { t.meta.Compression = enabled }
}

// WithCreatedAt sets the creation timestamp persisted in the metadata block.
// The tree has no clock of its own.
func WithCreatedAt(ts int64) Option {
	return func(t *Tree) {
		t.meta.CreatedAt = ts
		t.meta.LastModified = ts
	}
}

// New allocates a tree of the given depth. The node arena is sized once,
// 2^(depth+1)-1 values, and never grows. Depths above MaxDepth are rejected.
func New(depth uint8, maxLeafSize uint32, owner wave.Owner, opts ...Option) (*Tree, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds maximum %d", wave.ErrInvalidArgument, depth, MaxDepth)
	}
	t := &Tree{
		depth:     depth,
		nodes:     make([]wave.Value, (uint64(1)<<(depth+1))-1),
		processed: make(map[uint64]*Batch),
		newHash:   sha256.New,
		meta: Metadata{
			Owner:       owner,
			MaxLeafSize: maxLeafSize,
			Version:     FormatVersion,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Depth returns the fixed tree depth.
func (t *Tree) Depth() uint8 { return t.depth }

// LeafCount returns the number of leaves written so far.
func (t *Tree) LeafCount() uint64 { return t.leafCount }

// Capacity returns the maximum number of leaves, 2^depth.
func (t *Tree) Capacity() uint64 { return uint64(1) << t.depth }

// Root returns the current root commitment. It always equals the stored node
// at index 0 and reflects exactly the leaves written so far.
func (t *Tree) Root() wave.Value { return t.nodes[0] }

// Metadata returns a copy of the administrative block.
func (t *Tree) Metadata() Metadata { return t.meta }

// Finalized reports whether the tree has been closed to new batches.
func (t *Tree) Finalized() bool { return t.meta.Finalized }

// Insert appends leaf at the next free position and updates the ancestor
// hashes up to the root. It returns the leaf index, or ErrCapacityExceeded
// once 2^depth leaves are committed.
func (t *Tree) Insert(leaf wave.Value) (uint64, error) {
	if t.leafCount >= t.Capacity() {
		return 0, fmt.Errorf("%w: tree already holds %d leaves", wave.ErrCapacityExceeded, t.leafCount)
	}

	index := t.leafCount
	node := t.leafNodeIndex(index)
	t.nodes[node] = leaf
	t.updatePathToRoot(node)
	t.leafCount++
	return index, nil
}

// leafNodeIndex maps a leaf ordinal to its flat arena index.
func (t *Tree) leafNodeIndex(leafIndex uint64) uint64 {
	return (uint64(1) << t.depth) - 1 + leafIndex
}

// updatePathToRoot recomputes every ancestor of node. Each parent is the pair
// hash of its left then right child, in that order.
func (t *Tree) updatePathToRoot(node uint64) {
	for node > 0 {
		parent := (node - 1) / 2
		left := 2*parent + 1
		right := left + 1
		t.nodes[parent] = t.hashPair(t.nodes[left], t.nodes[right])
		node = parent
	}
}

func (t *Tree) hashPair(left, right wave.Value) wave.Value {
	h := t.newHash()
	h.Write(left[:])
	h.Write(right[:])
	var out wave.Value
	copy(out[:], h.Sum(nil))
	return out
}

// Finalize closes the tree to further CreateBatch calls. It fails while any
// batch is still pending; already processed state is unaffected.
func (t *Tree) Finalize() error {
	if len(t.pending) != 0 {
		return fmt.Errorf("%w: %d batches still pending", wave.ErrInvalidArgument, len(t.pending))
	}
	t.meta.Finalized = true
	return nil
}
