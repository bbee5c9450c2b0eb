package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	wave "github.com/wavefork/wave-verifier"
)

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	// Synchronous mode: the stores call these inline and the surrounding
	// model forbids background concurrency.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (*zstdCodec) Algorithm() Algorithm { return Zstd }

func (c *zstdCodec) Compress(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) Decompress(data []byte, sizeHint int) ([]byte, error) {
	buf := make([]byte, 0, sizeHint)
	out, err := c.dec.DecodeAll(data, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", wave.ErrMalformed, err)
	}
	return out, nil
}
