package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"zkvault/internal/attestation/models"
	"zkvault/pkg/domain"
	"zkvault/pkg/platform/sentinel"
)

const attestationsKey = "zkvault:attestations"

// RedisStore keeps attestations as JSON values in a single hash keyed by
// claim type. HSET replaces the whole record.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, claim domain.ClaimType) (*models.Attestation, error) {
	raw, err := s.client.HGet(ctx, attestationsKey, string(claim)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load attestation: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, att *models.Attestation) error {
	raw, err := json.Marshal(att)
	if err != nil {
		return fmt.Errorf("encode attestation: %w", err)
	}
	if err := s.client.HSet(ctx, attestationsKey, string(att.ClaimType), raw).Err(); err != nil {
		return fmt.Errorf("save attestation: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, claim domain.ClaimType) error {
	if err := s.client.HDel(ctx, attestationsKey, string(claim)).Err(); err != nil {
		return fmt.Errorf("delete attestation: %w", err)
	}
	return nil
}

// List skips records that no longer decode.
func (s *RedisStore) List(ctx context.Context) ([]*models.Attestation, error) {
	entries, err := s.client.HGetAll(ctx, attestationsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list attestations: %w", err)
	}
	out := make([]*models.Attestation, 0, len(entries))
	for _, claim := range domain.ClaimTypes {
		raw, ok := entries[string(claim)]
		if !ok {
			continue
		}
		att, err := decode([]byte(raw))
		if err != nil {
			continue
		}
		out = append(out, att)
	}
	return out, nil
}

func decode(raw []byte) (*models.Attestation, error) {
	var att models.Attestation
	if err := json.Unmarshal(raw, &att); err != nil || !att.ClaimType.IsValid() {
		return nil, fmt.Errorf("decode attestation: %w", sentinel.ErrCorrupt)
	}
	return &att, nil
}
