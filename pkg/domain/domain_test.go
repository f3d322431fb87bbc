package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zkvault/pkg/domain-errors"
)

func TestParseClaimType(t *testing.T) {
	for _, c := range ClaimTypes {
		got, err := ParseClaimType(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	for _, bad := range []string{"", "Country", "passport"} {
		_, err := ParseClaimType(bad)
		require.Error(t, err, bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}

func TestParseOrigin(t *testing.T) {
	accepted := []struct {
		in   string
		want Origin
	}{
		{"https://shop.example", "https://shop.example"},
		{"HTTPS://Shop.Example/", "https://shop.example"},
		{"https://shop.example:443", "https://shop.example"},
		{"http://localhost:80", "http://localhost"},
		{"http://localhost:3000", "http://localhost:3000"},
		{"https://shop.example:8443", "https://shop.example:8443"},
		{"http://[::1]:8080", "http://[::1]:8080"},
		{"http://[::1]", "http://[::1]"},
	}
	for _, tt := range accepted {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrigin(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	rejected := []string{
		"",
		"shop.example",
		"ftp://shop.example",
		"https://shop.example/checkout",
		"https://shop.example?x=1",
		"https://shop.example#frag",
		"https://user:pw@shop.example",
		"https://",
		"javascript:alert(1)",
	}
	for _, in := range rejected {
		t.Run("rejects "+in, func(t *testing.T) {
			_, err := ParseOrigin(in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}
