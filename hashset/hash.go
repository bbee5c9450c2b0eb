package hashset

import (
	"github.com/cespare/xxhash/v2"
)

// IndexHash maps an item to a 64 bit value used only for bucket placement.
// It is reduced modulo the bucket count, so it needs good distribution and
// speed, not collision resistance. Keep it distinct from the collision
// resistant pair hash the commitment tree uses; the two serve different
// purposes and are independently pluggable.
type IndexHash func(item []byte) uint64

// DefaultIndexHash is xxhash, a fast non cryptographic hash.
func DefaultIndexHash(item []byte) uint64 {
	return xxhash.Sum64(item)
}
