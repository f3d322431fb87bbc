package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/internal/permission/models"
	"zkvault/pkg/domain"
)

type grantStore interface {
	Put(ctx context.Context, grant models.Grant) error
	Delete(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error
	Exists(ctx context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error)
	ListByOrigin(ctx context.Context, origin domain.Origin) ([]models.Grant, error)
	ListOrigins(ctx context.Context) ([]domain.Origin, error)
}

// runStoreContract exercises behaviour every grant store must share. The
// store must be empty.
func runStoreContract(t *testing.T, s grantStore) {
	ctx := context.Background()
	shop := domain.Origin("https://shop.example")
	news := domain.Origin("https://news.example")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("absent grant is not granted", func(t *testing.T) {
		ok, err := s.Exists(ctx, shop, domain.ClaimCountry)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put is idempotent and keeps first timestamp", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, models.Grant{Origin: shop, ClaimType: domain.ClaimCountry, GrantedAt: at}))
		require.NoError(t, s.Put(ctx, models.Grant{Origin: shop, ClaimType: domain.ClaimCountry, GrantedAt: at.Add(time.Hour)}))
		require.NoError(t, s.Put(ctx, models.Grant{Origin: shop, ClaimType: domain.ClaimAge, GrantedAt: at}))

		grants, err := s.ListByOrigin(ctx, shop)
		require.NoError(t, err)
		require.Len(t, grants, 2)
		assert.Equal(t, domain.ClaimAge, grants[0].ClaimType)
		assert.Equal(t, domain.ClaimCountry, grants[1].ClaimType)
		assert.True(t, at.Equal(grants[1].GrantedAt))
	})

	t.Run("grants are isolated per origin", func(t *testing.T) {
		ok, err := s.Exists(ctx, news, domain.ClaimCountry)
		require.NoError(t, err)
		assert.False(t, ok)

		grants, err := s.ListByOrigin(ctx, news)
		require.NoError(t, err)
		assert.Empty(t, grants)
	})

	t.Run("delete removes grant and empty origin", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, shop, domain.ClaimCountry))
		require.NoError(t, s.Delete(ctx, shop, domain.ClaimCountry))

		ok, err := s.Exists(ctx, shop, domain.ClaimCountry)
		require.NoError(t, err)
		assert.False(t, ok)

		origins, err := s.ListOrigins(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Origin{shop}, origins)

		require.NoError(t, s.Delete(ctx, shop, domain.ClaimAge))
		origins, err = s.ListOrigins(ctx)
		require.NoError(t, err)
		assert.Empty(t, origins)
	})

	t.Run("delete of unknown origin is a no-op", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, news, domain.ClaimEmailDomain))
	})
}
