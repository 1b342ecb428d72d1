// Package rediskv provides a kv.Store backed by Redis.
package rediskv

import (
	"context"

	"github.com/advdv/xeno/kv"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Store keeps every value under prefix+key.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New creates a store on an existing client.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get")
	}

	return val, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to set")
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "failed to delete")
	}

	return nil
}

var _ kv.Store = (*Store)(nil)
