// Package hashset tracks membership of 32 byte identifiers inside a fixed,
// pre-allocated budget. Items are placed into fixed capacity buckets by a
// fast non cryptographic hash; an overfull bucket is relieved incrementally
// through a single slot rollover staging area so that no call ever performs
// an unbounded rehash. Every mutation is recorded in an operation log that an
// explicit checkpoint archives and clears.
//
// The bucket count is fixed at creation and never changes. Rollover
// redistributes one bucket's excess across the existing buckets; it is a
// rebalancing mechanism, not capacity growth, and it cannot relieve systemic
// overload of the whole set.
package hashset

import (
	"fmt"

	wave "github.com/wavefork/wave-verifier"
)

const (
	// BucketSize is the item capacity of one bucket; reaching it triggers a
	// rollover for that bucket.
	BucketSize = 32

	// DefaultCapacity is used when New is given a zero capacity.
	DefaultCapacity = 1024

	// MaxRolloverItems bounds the rollover staging area.
	MaxRolloverItems = 100

	// FormatVersion is the persisted record layout version.
	FormatVersion = 1
)

// Metadata is the administrative block persisted with every set instance.
type Metadata struct {
	CreatedAt     int64
	LastModified  int64
	Owner         wave.Owner
	Frozen        bool
	TotalOps      uint64
	RolloverCount uint32
}

// Bucket holds up to BucketSize items in insertion order, except that Remove
// swaps the last item into the vacated slot, so order is not preserved across
// removals.
type Bucket struct {
	Items        []wave.Value
	LastModified int64
	OpCount      uint32
}

// RolloverBuffer stages the excess of one overflowing bucket between
// prepareRollover and ProcessRollover. At most one episode is in flight at a
// time; a second bucket overflowing while Active is left over capacity until
// a later insert re-triggers it.
type RolloverBuffer struct {
	Items  []wave.Value
	Source int
	Active bool
}

// Set is the bucketed membership structure. It owns all of its state, never
// creates locks or goroutines, and relies on the caller for mutual exclusion.
type Set struct {
	buckets   []Bucket
	itemCount uint32
	capacity  uint32
	meta      Metadata
	rollover  RolloverBuffer
	log       OperationLog

	indexHash IndexHash
}

// Option adjusts set construction.
type Option func(*Set)

// WithIndexHash replaces the bucket placement hash. It should be fast rather
// than collision resistant; it is deliberately independent from the tree's
// pair hash.
func WithIndexHash(h IndexHash) Option {
	return func(s *Set) { s.indexHash = h }
}

// WithCreatedAt sets the creation timestamp persisted in the metadata block.
func WithCreatedAt(ts int64) Option {
	return func(s *Set) {
		s.meta.CreatedAt = ts
		s.meta.LastModified = ts
	}
}

// New creates a set holding at most capacity items across
// ceil(capacity/BucketSize) buckets. The allocation is fixed for the lifetime
// of the set.
func New(capacity uint32, owner wave.Owner, opts ...Option) *Set {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	bucketCount := (capacity + BucketSize - 1) / BucketSize
	s := &Set{
		buckets:   make([]Bucket, bucketCount),
		capacity:  capacity,
		meta:      Metadata{Owner: owner},
		indexHash: DefaultIndexHash,
	}
	s.rollover.Source = -1
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the fixed item budget.
func (s *Set) Capacity() uint32 { return s.capacity }

// Len returns the number of items currently held, staged items included.
func (s *Set) Len() uint32 { return s.itemCount }

// BucketCount returns the fixed number of buckets.
func (s *Set) BucketCount() int { return len(s.buckets) }

// Metadata returns a copy of the administrative block.
func (s *Set) Metadata() Metadata { return s.meta }

// Frozen reports whether mutations are blocked.
func (s *Set) Frozen() bool { return s.meta.Frozen }

// Freeze blocks Insert and Remove until an administrative action external to
// this structure clears the flag. Nothing in this package unfreezes a set.
func (s *Set) Freeze() {
	s.meta.Frozen = true
}

func (s *Set) bucketIndex(item wave.Value) int {
	return int(s.indexHash(item[:]) % uint64(len(s.buckets)))
}

// Insert adds item to its bucket. It returns (false, nil) when the item is
// already present, an error when the set is frozen or at capacity, and
// (true, nil) on success. Reaching BucketSize items in the target bucket
// triggers rollover staging for that bucket as a synchronous side effect.
func (s *Set) Insert(item wave.Value, ts int64) (bool, error) {
	if s.meta.Frozen {
		return false, fmt.Errorf("%w: set is frozen", wave.ErrFrozenOrFinalized)
	}
	if s.itemCount >= s.capacity {
		return false, fmt.Errorf("%w: set holds %d of %d items", wave.ErrCapacityExceeded, s.itemCount, s.capacity)
	}

	idx := s.bucketIndex(item)
	if containsValue(s.buckets[idx].Items, item) {
		return false, nil
	}
	// An item staged out of its bucket is still a member; re-admitting it
	// would leave it in two places once the rollover drains.
	if s.rollover.Active && containsValue(s.rollover.Items, item) {
		return false, nil
	}

	bucket := &s.buckets[idx]
	bucket.Items = append(bucket.Items, item)
	bucket.LastModified = ts
	bucket.OpCount++
	s.itemCount++
	s.meta.LastModified = ts
	s.logOperation(Operation{Type: OpInsert, Item: item, Timestamp: ts, BucketIndex: idx})

	if len(bucket.Items) >= BucketSize {
		if err := s.prepareRollover(idx); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Remove deletes item from its bucket by swapping the last item into its
// place. It returns (false, nil) when the item is absent and an error only
// when the set is frozen.
func (s *Set) Remove(item wave.Value, ts int64) (bool, error) {
	if s.meta.Frozen {
		return false, fmt.Errorf("%w: set is frozen", wave.ErrFrozenOrFinalized)
	}

	idx := s.bucketIndex(item)
	bucket := &s.buckets[idx]
	for i, have := range bucket.Items {
		if have != item {
			continue
		}
		last := len(bucket.Items) - 1
		bucket.Items[i] = bucket.Items[last]
		bucket.Items = bucket.Items[:last]
		bucket.LastModified = ts
		bucket.OpCount++
		s.itemCount--
		s.meta.LastModified = ts
		s.logOperation(Operation{Type: OpRemove, Item: item, Timestamp: ts, BucketIndex: idx})
		return true, nil
	}
	return false, nil
}

// Contains reports membership. It is a pure lookup: no log entry, and it
// keeps working while the set is frozen. Items staged in an active rollover
// are not visible until ProcessRollover lands them in a bucket.
func (s *Set) Contains(item wave.Value) bool {
	return containsValue(s.buckets[s.bucketIndex(item)].Items, item)
}

func containsValue(items []wave.Value, item wave.Value) bool {
	for _, have := range items {
		if have == item {
			return true
		}
	}
	return false
}

// BucketStats describes one bucket's occupancy for observability.
type BucketStats struct {
	BucketIndex  int
	ItemCount    int
	OpCount      uint32
	LastModified int64
}

// Stats returns per bucket occupancy counters.
func (s *Set) Stats() []BucketStats {
	out := make([]BucketStats, len(s.buckets))
	for i, b := range s.buckets {
		out[i] = BucketStats{
			BucketIndex:  i,
			ItemCount:    len(b.Items),
			OpCount:      b.OpCount,
			LastModified: b.LastModified,
		}
	}
	return out
}
