package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/internal/attestation/store"
	"zkvault/pkg/domain"
)

func TestInMemoryStoreContract(t *testing.T) {
	runStoreContract(t, store.NewInMemoryStore())
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	s := store.NewInMemoryStore()
	ctx := context.Background()
	att := sample(domain.ClaimCountry, 1, time.Now())
	require.NoError(t, s.Save(ctx, att))

	att.PublicClaim["countryCode"] = "FR"
	got, err := s.Load(ctx, domain.ClaimCountry)
	require.NoError(t, err)
	got.ProofBytes[0] = 9

	again, err := s.Load(ctx, domain.ClaimCountry)
	require.NoError(t, err)
	assert.Equal(t, "DE", again.PublicClaim["countryCode"])
	assert.Equal(t, byte(1), again.ProofBytes[0])
}
