package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/internal/attestation/models"
	"zkvault/pkg/domain"
	"zkvault/pkg/platform/sentinel"
)

type attestationStore interface {
	Load(ctx context.Context, claim domain.ClaimType) (*models.Attestation, error)
	Save(ctx context.Context, att *models.Attestation) error
	Delete(ctx context.Context, claim domain.ClaimType) error
	List(ctx context.Context) ([]*models.Attestation, error)
}

func sample(claim domain.ClaimType, proof byte, generated time.Time) *models.Attestation {
	return &models.Attestation{
		ClaimType:   claim,
		ProofBytes:  []byte{proof, proof},
		PublicClaim: map[string]any{"countryCode": "DE"},
		GeneratedAt: generated,
		ExpiresAt:   generated.Add(30 * 24 * time.Hour),
	}
}

func runStoreContract(t *testing.T, s attestationStore) {
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("missing claim is not found", func(t *testing.T) {
		_, err := s.Load(ctx, domain.ClaimAge)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save replaces the prior record", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, sample(domain.ClaimCountry, 1, t0)))
		require.NoError(t, s.Save(ctx, sample(domain.ClaimCountry, 2, t0.Add(time.Hour))))

		got, err := s.Load(ctx, domain.ClaimCountry)
		require.NoError(t, err)
		assert.Equal(t, []byte{2, 2}, got.ProofBytes)
		assert.True(t, got.GeneratedAt.Equal(t0.Add(time.Hour)))
		assert.Equal(t, "DE", got.PublicClaim["countryCode"])
	})

	t.Run("list in claim order", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, sample(domain.ClaimAge, 3, t0)))
		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, domain.ClaimCountry, all[0].ClaimType)
		assert.Equal(t, domain.ClaimAge, all[1].ClaimType)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, domain.ClaimAge))
		require.NoError(t, s.Delete(ctx, domain.ClaimAge))
		_, err := s.Load(ctx, domain.ClaimAge)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
