package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"zkvault/pkg/platform/sentinel"
)

const rootSecretKey = "zkvault:vault:root-secret"

var errSwapMismatch = errors.New("record changed")

// RedisStore keeps the root secret record under a single key. Atomic create
// uses SETNX; compare-and-swap uses WATCH/MULTI.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: rootSecretKey}
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load root secret: %w", err)
	}
	return raw, nil
}

func (s *RedisStore) CreateIfAbsent(ctx context.Context, raw []byte) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key, raw, 0).Result()
	if err != nil {
		return false, fmt.Errorf("create root secret: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, old, next []byte) (bool, error) {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return errSwapMismatch
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(current, old) {
			return errSwapMismatch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, next, 0)
			return nil
		})
		return err
	}, s.key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errSwapMismatch), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("swap root secret: %w", err)
	}
}

func (s *RedisStore) Put(ctx context.Context, raw []byte) error {
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("store root secret: %w", err)
	}
	return nil
}
