// Package codec frames the persisted records for the core structures. Every
// record is one contiguous byte region: a fixed header carrying a magic tag
// and a format version, a big endian length prefix, and a deterministically
// encoded CBOR body. Determinism matters because record bytes are compared
// and hashed by the surrounding system; encoding the same state twice must
// produce identical bytes.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	wave "github.com/wavefork/wave-verifier"
)

const (
	// MagicBytes is the width of the record magic tag.
	MagicBytes = 4

	// HeaderBytes is the fixed region before the CBOR body: magic, version,
	// three reserved zero bytes, and a uint32 body length.
	HeaderBytes = MagicBytes + 1 + 3 + 4
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// EncodeRecord frames body under the given magic and version. The magic must
// be exactly MagicBytes long.
func EncodeRecord(magic string, version uint8, body any) ([]byte, error) {
	if len(magic) != MagicBytes {
		return nil, fmt.Errorf("%w: record magic must be %d bytes", wave.ErrInvalidArgument, MagicBytes)
	}
	if version == 0 {
		return nil, fmt.Errorf("%w: record version 0 is reserved", wave.ErrInvalidArgument)
	}
	enc, err := encMode.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding record body: %w", err)
	}

	data := make([]byte, HeaderBytes+len(enc))
	copy(data[:MagicBytes], magic)
	data[MagicBytes] = version
	// bytes 5..7 are reserved and stay zero
	binary.BigEndian.PutUint32(data[MagicBytes+4:HeaderBytes], uint32(len(enc)))
	copy(data[HeaderBytes:], enc)
	return data, nil
}

// DecodeRecord validates the frame around data and unmarshals the body. It
// accepts any version in [1, maxVersion] and returns the version found so the
// caller can migrate older layouts. All validation failures report
// wave.ErrMalformed.
func DecodeRecord(magic string, maxVersion uint8, data []byte, body any) (uint8, error) {
	if len(magic) != MagicBytes {
		return 0, fmt.Errorf("%w: record magic must be %d bytes", wave.ErrInvalidArgument, MagicBytes)
	}
	if len(data) < HeaderBytes {
		return 0, fmt.Errorf("%w: record shorter than header", wave.ErrMalformed)
	}
	if string(data[:MagicBytes]) != magic {
		return 0, fmt.Errorf("%w: record magic mismatch", wave.ErrMalformed)
	}
	version := data[MagicBytes]
	if version == 0 || version > maxVersion {
		return 0, fmt.Errorf("%w: unsupported record version %d", wave.ErrMalformed, version)
	}
	if data[MagicBytes+1] != 0 || data[MagicBytes+2] != 0 || data[MagicBytes+3] != 0 {
		return 0, fmt.Errorf("%w: reserved header bytes set", wave.ErrMalformed)
	}
	bodyLen := binary.BigEndian.Uint32(data[MagicBytes+4 : HeaderBytes])
	if uint64(bodyLen) != uint64(len(data)-HeaderBytes) {
		return 0, fmt.Errorf("%w: record length prefix disagrees with body", wave.ErrMalformed)
	}
	if err := decMode.Unmarshal(data[HeaderBytes:], body); err != nil {
		return 0, fmt.Errorf("%w: %v", wave.ErrMalformed, err)
	}
	return version, nil
}
