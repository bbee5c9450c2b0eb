package wave

import (
	"encoding/hex"
)

// ValueBytes is the fixed width of every committed value and set item.
const ValueBytes = 32

// Value is an opaque 32 byte quantity: a tree leaf, an interior node hash, or
// a nullifier tracked by the hash set.
type Value [ValueBytes]byte

// ValueFromBytes copies b into a Value. It returns ErrInvalidArgument unless b
// is exactly 32 bytes.
func ValueFromBytes(b []byte) (Value, error) {
	var v Value
	if len(b) != ValueBytes {
		return v, ErrInvalidArgument
	}
	copy(v[:], b)
	return v, nil
}

func (v Value) String() string {
	return hex.EncodeToString(v[:])
}

// IsZero reports whether v is the all zero value, which the tree uses for
// unwritten node slots.
func (v Value) IsZero() bool {
	return v == Value{}
}

// Owner identifies the administrative authority for a structure instance. The
// core never verifies signatures against it; the surrounding layer resolves
// authorization and passes a pre-verified boolean down.
type Owner [32]byte

func (o Owner) String() string {
	return hex.EncodeToString(o[:])
}
