package wave

import "errors"

// The error kinds reported by the core structures. Specific failures wrap one
// of these, so callers branch with errors.Is rather than string matching.
var (
	// ErrCapacityExceeded covers every fixed-budget exhaustion: a full tree,
	// a set at capacity, an oversized batch, a full rollover staging buffer.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidArgument covers malformed caller input such as a proof length
	// mismatch, a depth beyond the supported maximum, or an index past the
	// written leaves.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFrozenOrFinalized is returned by mutating calls on a frozen set or a
	// finalized tree. Read paths keep working.
	ErrFrozenOrFinalized = errors.New("frozen or finalized")

	// ErrMalformed is returned when a persisted record fails decode or format
	// validation.
	ErrMalformed = errors.New("malformed record")
)
