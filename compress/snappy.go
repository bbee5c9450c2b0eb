package compress

import (
	"fmt"

	"github.com/golang/snappy"

	wave "github.com/wavefork/wave-verifier"
)

type snappyCodec struct{}

func (*snappyCodec) Algorithm() Algorithm { return Snappy }

func (*snappyCodec) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (*snappyCodec) Decompress(data []byte, sizeHint int) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %v", wave.ErrMalformed, err)
	}
	return out, nil
}
