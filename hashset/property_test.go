package hashset

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	wave "github.com/wavefork/wave-verifier"
)

func genItem() gopter.Gen {
	return gen.SliceOfN(wave.ValueBytes, gen.UInt8()).Map(func(b []byte) wave.Value {
		var v wave.Value
		copy(v[:], b)
		return v
	})
}

// TestSetMatchesModel drives random insert and remove sequences against a
// plain map and requires the set to agree on membership and size, with
// rollovers drained along the way.
func TestSetMatchesModel(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50

	properties := gopter.NewProperties(params)

	properties.Property("membership matches a map model", prop.ForAll(
		func(items []wave.Value, removeEvery int) bool {
			s := New(4096, testOwner(1))
			model := make(map[wave.Value]bool)
			ts := int64(0)
			for i, item := range items {
				ts++
				ok, err := s.Insert(item, ts)
				if err != nil {
					return false
				}
				if ok != !model[item] {
					return false
				}
				model[item] = true
				if s.RolloverActive() {
					ts++
					s.ProcessRollover(ts)
				}

				if removeEvery > 0 && i%removeEvery == 0 {
					ts++
					victim := items[i/2]
					ok, err := s.Remove(victim, ts)
					if err != nil {
						return false
					}
					if ok != model[victim] {
						return false
					}
					delete(model, victim)
				}
			}
			if s.Len() != uint32(len(model)) {
				return false
			}
			for item := range model {
				if !s.Contains(item) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genItem()),
		gen.IntRange(0, 7),
	))

	properties.Property("round trips preserve membership", prop.ForAll(
		func(items []wave.Value) bool {
			s := New(4096, testOwner(1))
			for i, item := range items {
				if _, err := s.Insert(item, int64(i)); err != nil {
					return false
				}
			}
			data, err := s.MarshalBinary()
			if err != nil {
				return false
			}
			got, err := UnmarshalBinary(data)
			if err != nil {
				return false
			}
			for _, item := range items {
				seen := containsValue(got.buckets[got.bucketIndex(item)].Items, item) ||
					containsValue(got.rollover.Items, item)
				if !seen {
					return false
				}
			}
			return got.Len() == s.Len()
		},
		gen.SliceOf(genItem()),
	))

	properties.TestingRun(t)
}
