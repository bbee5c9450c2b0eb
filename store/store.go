// Package store persists the encoded records of the core structures behind a
// narrow object store interface. Implementations are deliberately dumb byte
// stores: all framing, versioning and validation lives in the record codecs.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for an unknown record name.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface consumed by the admin tooling and the
// registry. Records are addressed by name, typically derived from the owner
// identity and the structure kind.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	Close() error
}
