// Package compress provides the pluggable byte codec pair consumed by the
// record stores: Compress(bytes) and Decompress(bytes, sizeHint), selected by
// an algorithm tag. The core structures never compress anything themselves;
// the commitment tree only records whether its persisted record is wrapped.
package compress

import (
	"fmt"

	wave "github.com/wavefork/wave-verifier"
)

// Algorithm tags a codec in persisted records and configuration.
type Algorithm uint8

const (
	// None passes bytes through unchanged.
	None Algorithm = iota
	Snappy
	Zstd
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseAlgorithm maps a configuration string to an algorithm tag.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return None, fmt.Errorf("%w: unknown compression algorithm %q", wave.ErrInvalidArgument, name)
}

// Codec is one compression algorithm. sizeHint is the expected decompressed
// size; codecs may use it for allocation and must not trust it.
type Codec interface {
	Algorithm() Algorithm
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, sizeHint int) ([]byte, error)
}

// ForAlgorithm returns the codec for tag.
func ForAlgorithm(a Algorithm) (Codec, error) {
	switch a {
	case None:
		return nopCodec{}, nil
	case Snappy:
		return &snappyCodec{}, nil
	case Zstd:
		return newZstdCodec()
	}
	return nil, fmt.Errorf("%w: unknown compression algorithm %d", wave.ErrInvalidArgument, a)
}

type nopCodec struct{}

func (nopCodec) Algorithm() Algorithm { return None }

func (nopCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (nopCodec) Decompress(data []byte, sizeHint int) ([]byte, error) { return data, nil }
