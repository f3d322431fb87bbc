package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/pkg/domain"
)

func TestConsentPolicy(t *testing.T) {
	ctx := context.Background()
	p, err := NewConsentPolicy(ctx)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	origin := domain.Origin("https://shop.example")

	tests := []struct {
		name        string
		autoApprove bool
		expiresAt   time.Time
		want        bool
	}{
		{"opted in and fresh", true, now.Add(24 * time.Hour), true},
		{"opted out", false, now.Add(24 * time.Hour), false},
		{"opted in but expired", true, now.Add(-time.Second), false},
		{"expires exactly now", true, now, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.AutoApprove(ctx, NewInput(origin, domain.ClaimCountry, tt.autoApprove, 30, tt.expiresAt, now))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsentPolicyFromSource(t *testing.T) {
	ctx := context.Background()

	t.Run("custom policy limits auto approval by claim", func(t *testing.T) {
		p, err := NewConsentPolicyFromSource(ctx, `package zkvault.consent

import rego.v1

default auto_approve := false

auto_approve if {
	input.settings.autoApprove
	input.claimType == "country"
}
`)
		require.NoError(t, err)
		now := time.Now()

		got, err := p.AutoApprove(ctx, NewInput("https://a.example", domain.ClaimCountry, true, 30, now.Add(time.Hour), now))
		require.NoError(t, err)
		assert.True(t, got)

		got, err = p.AutoApprove(ctx, NewInput("https://a.example", domain.ClaimAge, true, 30, now.Add(time.Hour), now))
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("invalid source fails to compile", func(t *testing.T) {
		_, err := NewConsentPolicyFromSource(ctx, "package zkvault.consent\nauto_approve := {")
		assert.Error(t, err)
	})

	t.Run("nil policy", func(t *testing.T) {
		var p *ConsentPolicy
		_, err := p.AutoApprove(ctx, Input{})
		assert.Error(t, err)
	})
}
