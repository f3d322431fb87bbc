package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"zkvault/internal/permission/models"
	"zkvault/pkg/domain"
)

const (
	grantKeyPrefix = "zkvault:permissions:"
	originsKey     = "zkvault:permission-origins"
)

// RedisStore keeps one hash per origin (claim type -> granted-at unix
// seconds) and a set of origins with at least one grant.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func grantKey(origin domain.Origin) string {
	return grantKeyPrefix + string(origin)
}

func (s *RedisStore) Put(ctx context.Context, grant models.Grant) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, grantKey(grant.Origin), string(grant.ClaimType), grant.GrantedAt.Unix())
		pipe.SAdd(ctx, originsKey, string(grant.Origin))
		return nil
	})
	if err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

// Delete removes the grant and drops the origin from the index once its hash
// is empty. The check runs in a Lua script so a concurrent Put cannot be lost.
func (s *RedisStore) Delete(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error {
	if err := deleteScript.Run(ctx, s.client, []string{grantKey(origin), originsKey}, string(claim), string(origin)).Err(); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}

var deleteScript = redis.NewScript(`
redis.call("HDEL", KEYS[1], ARGV[1])
if redis.call("HLEN", KEYS[1]) == 0 then
  redis.call("SREM", KEYS[2], ARGV[2])
end
return 1
`)

func (s *RedisStore) Exists(ctx context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error) {
	ok, err := s.client.HExists(ctx, grantKey(origin), string(claim)).Result()
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ListByOrigin(ctx context.Context, origin domain.Origin) ([]models.Grant, error) {
	entries, err := s.client.HGetAll(ctx, grantKey(origin)).Result()
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	out := make([]models.Grant, 0, len(entries))
	for claim, ts := range entries {
		var unix int64
		if _, err := fmt.Sscan(ts, &unix); err != nil {
			continue
		}
		out = append(out, models.Grant{Origin: origin, ClaimType: domain.ClaimType(claim), GrantedAt: time.Unix(unix, 0).UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimType < out[j].ClaimType })
	return out, nil
}

func (s *RedisStore) ListOrigins(ctx context.Context) ([]domain.Origin, error) {
	members, err := s.client.SMembers(ctx, originsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list origins: %w", err)
	}
	sort.Strings(members)
	out := make([]domain.Origin, len(members))
	for i, m := range members {
		out[i] = domain.Origin(m)
	}
	return out, nil
}
