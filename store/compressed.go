package store

import (
	"context"
	"encoding/binary"
	"fmt"

	wave "github.com/wavefork/wave-verifier"
	"github.com/wavefork/wave-verifier/compress"
)

// Compressed wraps a Store so record bytes are compressed on Put and
// transparently expanded on Get. A one byte algorithm tag and the original
// length prefix the payload, so mixed algorithms can coexist in one store and
// the decompress size hint survives the round trip.
type Compressed struct {
	inner Store
	codec compress.Codec
}

const compressedHeader = 1 + 4

func NewCompressed(inner Store, codec compress.Codec) *Compressed {
	return &Compressed{inner: inner, codec: codec}
}

func (s *Compressed) Put(ctx context.Context, name string, data []byte) error {
	packed, err := s.codec.Compress(data)
	if err != nil {
		return fmt.Errorf("compressing record %s: %w", name, err)
	}
	out := make([]byte, compressedHeader+len(packed))
	out[0] = byte(s.codec.Algorithm())
	binary.BigEndian.PutUint32(out[1:compressedHeader], uint32(len(data)))
	copy(out[compressedHeader:], packed)
	return s.inner.Put(ctx, name, out)
}

func (s *Compressed) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(data) < compressedHeader {
		return nil, fmt.Errorf("%w: compressed record %s shorter than header", wave.ErrMalformed, name)
	}
	codec, err := compress.ForAlgorithm(compress.Algorithm(data[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: record %s carries unknown compression tag %d", wave.ErrMalformed, name, data[0])
	}
	sizeHint := int(binary.BigEndian.Uint32(data[1:compressedHeader]))
	out, err := codec.Decompress(data[compressedHeader:], sizeHint)
	if err != nil {
		return nil, fmt.Errorf("expanding record %s: %w", name, err)
	}
	return out, nil
}

func (s *Compressed) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *Compressed) Close() error { return s.inner.Close() }
