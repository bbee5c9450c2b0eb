package hashset

import (
	"fmt"

	wave "github.com/wavefork/wave-verifier"
)

// Rollover chips the cost of relieving an overfull bucket into bounded
// pieces: staging half the bucket now, redistributing later. The state
// machine is Idle -> (bucket overflow) -> Active -> (ProcessRollover) ->
// Idle, with exactly one bucket draining per episode. Neither step ever
// advances spontaneously; both run only as synchronous effects of an explicit
// call.

// prepareRollover stages the first half of the overflowing bucket. It is a
// no-op while an episode is already active; the second bucket stays over
// capacity until a later insert re-triggers it.
func (s *Set) prepareRollover(bucketIndex int) error {
	if s.rollover.Active {
		return nil
	}

	bucket := &s.buckets[bucketIndex]
	moved := len(bucket.Items) / 2
	if moved > MaxRolloverItems {
		return fmt.Errorf("%w: rollover staging cannot hold %d items", wave.ErrCapacityExceeded, moved)
	}

	s.rollover.Items = append(s.rollover.Items, bucket.Items[:moved]...)
	bucket.Items = append([]wave.Value(nil), bucket.Items[moved:]...)
	s.rollover.Source = bucketIndex
	s.rollover.Active = true
	return nil
}

// ProcessRollover drains the staging area, appending each staged item to the
// bucket chosen by the same hash over the same, unchanged bucket count. It is
// a no-op when no episode is active. A single Rollover entry is logged for
// the whole episode.
func (s *Set) ProcessRollover(ts int64) {
	if !s.rollover.Active {
		return
	}

	for _, item := range s.rollover.Items {
		idx := s.bucketIndex(item)
		bucket := &s.buckets[idx]
		bucket.Items = append(bucket.Items, item)
		bucket.LastModified = ts
		bucket.OpCount++
	}

	s.logOperation(Operation{Type: OpRollover, Timestamp: ts})
	s.rollover.Items = nil
	s.rollover.Source = -1
	s.rollover.Active = false
	s.meta.RolloverCount++
	s.meta.LastModified = ts
}

// RolloverActive reports whether a staging episode is in flight.
func (s *Set) RolloverActive() bool { return s.rollover.Active }

// RolloverCount returns the number of completed rollover episodes.
func (s *Set) RolloverCount() uint32 { return s.meta.RolloverCount }

// StagedItems returns a copy of the items currently staged.
func (s *Set) StagedItems() []wave.Value {
	return append([]wave.Value(nil), s.rollover.Items...)
}
