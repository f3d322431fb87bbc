package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"zkvault/internal/settings/models"
	"zkvault/pkg/platform/sentinel"
)

// InMemoryStore holds settings for a single process.
type InMemoryStore struct {
	mu       sync.RWMutex
	settings *models.Settings
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(_ context.Context) (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return models.Settings{}, sentinel.ErrNotFound
	}
	return *s.settings, nil
}

func (s *InMemoryStore) Save(_ context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

const settingsKey = "zkvault:settings"

// RedisStore stores settings as one JSON document.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (models.Settings, error) {
	raw, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Settings{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	var out models.Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.Settings{}, fmt.Errorf("decode settings: %w", sentinel.ErrCorrupt)
	}
	return out, nil
}

func (s *RedisStore) Save(ctx context.Context, settings models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.client.Set(ctx, settingsKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
