package merkle

import (
	"bytes"
	"fmt"
	"sort"

	wave "github.com/wavefork/wave-verifier"
	"github.com/wavefork/wave-verifier/codec"
)

// Magic tags the persisted tree record.
const Magic = "WMT1"

// The record body is CBOR with integer keys, framed by the codec package.
// Node and leaf values are flattened into contiguous byte strings rather than
// arrays of arrays; the flat arena is the natural wire shape and keeps the
// encoding compact and deterministic.

type treeRecordV1 struct {
	Depth     uint8           `cbor:"1,keyasint"`
	LeafCount uint64          `cbor:"2,keyasint"`
	Root      []byte          `cbor:"3,keyasint"`
	Nodes     []byte          `cbor:"4,keyasint"`
	Meta      treeMetaV1      `cbor:"5,keyasint"`
	Pending   []batchRecordV1 `cbor:"6,keyasint"`
	Processed []batchRecordV1 `cbor:"7,keyasint"`
}

type treeMetaV1 struct {
	CreatedAt    int64  `cbor:"1,keyasint"`
	LastModified int64  `cbor:"2,keyasint"`
	Owner        []byte `cbor:"3,keyasint"`
	Finalized    bool   `cbor:"4,keyasint"`
	MaxLeafSize  uint32 `cbor:"5,keyasint"`
	Compression  bool   `cbor:"6,keyasint"`
	Version      uint8  `cbor:"7,keyasint"`
}

type batchRecordV1 struct {
	Seq         uint64 `cbor:"1,keyasint"`
	Leaves      []byte `cbor:"2,keyasint"`
	Submitter   []byte `cbor:"3,keyasint"`
	SubmittedAt int64  `cbor:"4,keyasint"`
	Class       uint8  `cbor:"5,keyasint"`
	Status      uint8  `cbor:"6,keyasint"`
}

// MarshalBinary encodes the complete tree state as one versioned record.
func (t *Tree) MarshalBinary() ([]byte, error) {
	rec := treeRecordV1{
		Depth:     t.depth,
		LeafCount: t.leafCount,
		Root:      append([]byte(nil), t.nodes[0][:]...),
		Nodes:     flattenValues(t.nodes),
		Meta: treeMetaV1{
			CreatedAt:    t.meta.CreatedAt,
			LastModified: t.meta.LastModified,
			Owner:        append([]byte(nil), t.meta.Owner[:]...),
			Finalized:    t.meta.Finalized,
			MaxLeafSize:  t.meta.MaxLeafSize,
			Compression:  t.meta.Compression,
			Version:      t.meta.Version,
		},
	}
	for _, b := range t.pending {
		rec.Pending = append(rec.Pending, encodeBatch(b))
	}
	// The archive is a map in memory; the record orders it by sequence so the
	// same state always encodes to the same bytes.
	seqs := make([]uint64, 0, len(t.processed))
	for seq := range t.processed {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for _, seq := range seqs {
		rec.Processed = append(rec.Processed, encodeBatch(t.processed[seq]))
	}

	return codec.EncodeRecord(Magic, FormatVersion, &rec)
}

// UnmarshalBinary decodes a persisted tree record. Options are applied after
// decode, so a non default pair hash can be re-attached to a loaded tree.
func UnmarshalBinary(data []byte, opts ...Option) (*Tree, error) {
	var rec treeRecordV1
	if _, err := codec.DecodeRecord(Magic, FormatVersion, data, &rec); err != nil {
		return nil, err
	}

	if rec.Depth > MaxDepth {
		return nil, fmt.Errorf("%w: tree record depth %d exceeds maximum", wave.ErrMalformed, rec.Depth)
	}
	nodes, err := unflattenValues(rec.Nodes)
	if err != nil {
		return nil, fmt.Errorf("%w: tree record node arena misaligned", wave.ErrMalformed)
	}
	if uint64(len(nodes)) != (uint64(1)<<(rec.Depth+1))-1 {
		return nil, fmt.Errorf("%w: tree record node arena has %d nodes for depth %d", wave.ErrMalformed, len(nodes), rec.Depth)
	}
	if rec.LeafCount > uint64(1)<<rec.Depth {
		return nil, fmt.Errorf("%w: tree record leaf count %d exceeds capacity", wave.ErrMalformed, rec.LeafCount)
	}
	if !bytes.Equal(rec.Root, nodes[0][:]) {
		return nil, fmt.Errorf("%w: tree record root disagrees with node arena", wave.ErrMalformed)
	}

	owner, err := wave.ValueFromBytes(rec.Meta.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: tree record owner identity malformed", wave.ErrMalformed)
	}

	t, err := New(rec.Depth, rec.Meta.MaxLeafSize, wave.Owner(owner))
	if err != nil {
		return nil, err
	}
	t.nodes = nodes
	t.leafCount = rec.LeafCount
	t.meta = Metadata{
		CreatedAt:    rec.Meta.CreatedAt,
		LastModified: rec.Meta.LastModified,
		Owner:        wave.Owner(owner),
		Finalized:    rec.Meta.Finalized,
		MaxLeafSize:  rec.Meta.MaxLeafSize,
		Compression:  rec.Meta.Compression,
		Version:      rec.Meta.Version,
	}
	for _, br := range rec.Pending {
		b, err := decodeBatch(br)
		if err != nil {
			return nil, err
		}
		t.pending = append(t.pending, b)
	}
	for _, br := range rec.Processed {
		b, err := decodeBatch(br)
		if err != nil {
			return nil, err
		}
		t.processed[b.Seq] = b
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func encodeBatch(b *Batch) batchRecordV1 {
	return batchRecordV1{
		Seq:         b.Seq,
		Leaves:      flattenValues(b.Leaves),
		Submitter:   append([]byte(nil), b.Submitter[:]...),
		SubmittedAt: b.SubmittedAt,
		Class:       uint8(b.Class),
		Status:      uint8(b.Status),
	}
}

func decodeBatch(br batchRecordV1) (*Batch, error) {
	leaves, err := unflattenValues(br.Leaves)
	if err != nil {
		return nil, fmt.Errorf("%w: batch %d leaves misaligned", wave.ErrMalformed, br.Seq)
	}
	submitter, err := wave.ValueFromBytes(br.Submitter)
	if err != nil {
		return nil, fmt.Errorf("%w: batch %d submitter malformed", wave.ErrMalformed, br.Seq)
	}
	if br.Class > uint8(ClassRollover) {
		return nil, fmt.Errorf("%w: batch %d class %d unknown", wave.ErrMalformed, br.Seq, br.Class)
	}
	if br.Status > uint8(BatchFailed) {
		return nil, fmt.Errorf("%w: batch %d status %d unknown", wave.ErrMalformed, br.Seq, br.Status)
	}
	return &Batch{
		Seq:         br.Seq,
		Leaves:      leaves,
		Submitter:   wave.Owner(submitter),
		SubmittedAt: br.SubmittedAt,
		Class:       BatchClass(br.Class),
		Status:      BatchStatus(br.Status),
	}, nil
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
