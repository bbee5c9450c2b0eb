package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDB persists records in a leveldb database, for deployments keeping
// many instances in one place.
type LevelDB struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb store: %w", err)
	}
	return &LevelDB{db: db}, nil
}

func (s *LevelDB) Put(ctx context.Context, name string, data []byte) error {
	if err := s.db.Put([]byte(name), data, nil); err != nil {
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	return nil
}

func (s *LevelDB) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.db.Get([]byte(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", name, err)
	}
	return data, nil
}

func (s *LevelDB) Delete(ctx context.Context, name string) error {
	if err := s.db.Delete([]byte(name), nil); err != nil {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

func (s *LevelDB) Close() error { return s.db.Close() }
