package hashset

import (
	"fmt"

	wave "github.com/wavefork/wave-verifier"
	"github.com/wavefork/wave-verifier/codec"
)

// Magic tags the persisted set record.
const Magic = "WHS1"

type setRecordV1 struct {
	Capacity  uint32           `cbor:"1,keyasint"`
	ItemCount uint32           `cbor:"2,keyasint"`
	Buckets   []bucketRecordV1 `cbor:"3,keyasint"`
	Meta      setMetaV1        `cbor:"4,keyasint"`
	Rollover  rolloverRecordV1 `cbor:"5,keyasint"`
	Log       logRecordV1      `cbor:"6,keyasint"`
}

type bucketRecordV1 struct {
	Items        []byte `cbor:"1,keyasint"`
	LastModified int64  `cbor:"2,keyasint"`
	OpCount      uint32 `cbor:"3,keyasint"`
}

type setMetaV1 struct {
	CreatedAt     int64  `cbor:"1,keyasint"`
	LastModified  int64  `cbor:"2,keyasint"`
	Owner         []byte `cbor:"3,keyasint"`
	Frozen        bool   `cbor:"4,keyasint"`
	TotalOps      uint64 `cbor:"5,keyasint"`
	RolloverCount uint32 `cbor:"6,keyasint"`
}

type rolloverRecordV1 struct {
	Items  []byte `cbor:"1,keyasint"`
	Source int    `cbor:"2,keyasint"`
	Active bool   `cbor:"3,keyasint"`
}

type logRecordV1 struct {
	Ops            []opRecordV1 `cbor:"1,keyasint"`
	LastCheckpoint uint64       `cbor:"2,keyasint"`
}

type opRecordV1 struct {
	Type        uint8  `cbor:"1,keyasint"`
	Item        []byte `cbor:"2,keyasint"`
	Timestamp   int64  `cbor:"3,keyasint"`
	BucketIndex int    `cbor:"4,keyasint"`
}

// MarshalBinary encodes the complete set state as one versioned record.
func (s *Set) MarshalBinary() ([]byte, error) {
	rec := setRecordV1{
		Capacity:  s.capacity,
		ItemCount: s.itemCount,
		Meta: setMetaV1{
			CreatedAt:     s.meta.CreatedAt,
			LastModified:  s.meta.LastModified,
			Owner:         append([]byte(nil), s.meta.Owner[:]...),
			Frozen:        s.meta.Frozen,
			TotalOps:      s.meta.TotalOps,
			RolloverCount: s.meta.RolloverCount,
		},
		Rollover: rolloverRecordV1{
			Items:  flattenValues(s.rollover.Items),
			Source: s.rollover.Source,
			Active: s.rollover.Active,
		},
		Log: logRecordV1{LastCheckpoint: s.log.LastCheckpoint},
	}
	for _, b := range s.buckets {
		rec.Buckets = append(rec.Buckets, bucketRecordV1{
			Items:        flattenValues(b.Items),
			LastModified: b.LastModified,
			OpCount:      b.OpCount,
		})
	}
	for _, op := range s.log.Ops {
		rec.Log.Ops = append(rec.Log.Ops, opRecordV1{
			Type:        uint8(op.Type),
			Item:        append([]byte(nil), op.Item[:]...),
			Timestamp:   op.Timestamp,
			BucketIndex: op.BucketIndex,
		})
	}
	return codec.EncodeRecord(Magic, FormatVersion, &rec)
}

// UnmarshalBinary decodes a persisted set record. The bucket count is derived
// from the recorded capacity and must match the bucket list.
func UnmarshalBinary(data []byte, opts ...Option) (*Set, error) {
	var rec setRecordV1
	if _, err := codec.DecodeRecord(Magic, FormatVersion, data, &rec); err != nil {
		return nil, err
	}

	if rec.Capacity == 0 {
		return nil, fmt.Errorf("%w: set record capacity is zero", wave.ErrMalformed)
	}
	wantBuckets := int((rec.Capacity + BucketSize - 1) / BucketSize)
	if len(rec.Buckets) != wantBuckets {
		return nil, fmt.Errorf("%w: set record has %d buckets, capacity %d requires %d",
			wave.ErrMalformed, len(rec.Buckets), rec.Capacity, wantBuckets)
	}
	owner, err := wave.ValueFromBytes(rec.Meta.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: set record owner identity malformed", wave.ErrMalformed)
	}
	if rec.Rollover.Active && (rec.Rollover.Source < 0 || rec.Rollover.Source >= wantBuckets) {
		return nil, fmt.Errorf("%w: set record rollover source %d out of range", wave.ErrMalformed, rec.Rollover.Source)
	}

	s := New(rec.Capacity, wave.Owner(owner))
	s.itemCount = rec.ItemCount
	s.meta = Metadata{
		CreatedAt:     rec.Meta.CreatedAt,
		LastModified:  rec.Meta.LastModified,
		Owner:         wave.Owner(owner),
		Frozen:        rec.Meta.Frozen,
		TotalOps:      rec.Meta.TotalOps,
		RolloverCount: rec.Meta.RolloverCount,
	}
	for i, br := range rec.Buckets {
		items, err := unflattenValues(br.Items)
		if err != nil {
			return nil, fmt.Errorf("%w: set record bucket %d misaligned", wave.ErrMalformed, i)
		}
		s.buckets[i] = Bucket{Items: items, LastModified: br.LastModified, OpCount: br.OpCount}
	}
	staged, err := unflattenValues(rec.Rollover.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: set record rollover staging misaligned", wave.ErrMalformed)
	}
	if len(staged) > MaxRolloverItems {
		return nil, fmt.Errorf("%w: set record stages %d items", wave.ErrMalformed, len(staged))
	}
	s.rollover = RolloverBuffer{Items: staged, Source: rec.Rollover.Source, Active: rec.Rollover.Active}
	if !rec.Rollover.Active {
		s.rollover.Source = -1
	}
	s.log.LastCheckpoint = rec.Log.LastCheckpoint
	for _, or := range rec.Log.Ops {
		if or.Type > uint8(OpCheckpoint) {
			return nil, fmt.Errorf("%w: set record log entry type %d unknown", wave.ErrMalformed, or.Type)
		}
		item, err := wave.ValueFromBytes(or.Item)
		if err != nil {
			return nil, fmt.Errorf("%w: set record log item malformed", wave.ErrMalformed)
		}
		s.log.Ops = append(s.log.Ops, Operation{
			Type:        OpType(or.Type),
			Item:        item,
			Timestamp:   or.Timestamp,
			BucketIndex: or.BucketIndex,
		})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func flattenValues(vs []wave.Value) []byte {
	out := make([]byte, 0, len(vs)*wave.ValueBytes)
	for _, v := range vs {
		out = append(out, v[:]...)
	}
	return out
}

func unflattenValues(b []byte) ([]wave.Value, error) {
	if len(b)%wave.ValueBytes != 0 {
		return nil, wave.ErrMalformed
	}
	out := make([]wave.Value, len(b)/wave.ValueBytes)
	for i := range out {
		copy(out[i][:], b[i*wave.ValueBytes:])
	}
	return out, nil
}
