// Package pebblekv provides a durable, embedded kv.Store on top of Pebble.
package pebblekv

import (
	"context"

	"github.com/advdv/xeno/kv"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// Store is a kv.Store backed by a Pebble database on local disk.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database in dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open pebble db at %q", dir)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	val, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, kv.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get")
	}
	defer closer.Close()

	// the value is only valid until the closer is closed
	return append([]byte{}, val...), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return errors.Wrap(err, "failed to set")
	}

	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return errors.Wrap(err, "failed to delete")
	}

	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ kv.Store = (*Store)(nil)
