package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/internal/vault/models"
)

func newTestCipher(t *testing.T, fingerprint string) *Cipher {
	t.Helper()
	c, err := NewCipher(DeriveKey(fingerprint))
	require.NoError(t, err)
	return c
}

func TestEncryptDecrypt(t *testing.T) {
	c := newTestCipher(t, "test-device")
	secret, err := GenerateSecret()
	require.NoError(t, err)
	require.Len(t, secret, models.SecretSize)

	t.Run("round trip", func(t *testing.T) {
		rec, err := c.Encrypt(secret)
		require.NoError(t, err)
		assert.Len(t, rec.IV, models.IVSize)
		assert.Equal(t, models.SchemaVersion, rec.SchemaVersion)
		assert.False(t, bytes.Contains(rec.Ciphertext, secret))

		plain, err := c.Decrypt(rec)
		require.NoError(t, err)
		assert.Equal(t, secret, plain)
	})

	t.Run("fresh iv per encryption", func(t *testing.T) {
		a, err := c.Encrypt(secret)
		require.NoError(t, err)
		b, err := c.Encrypt(secret)
		require.NoError(t, err)
		assert.NotEqual(t, a.IV, b.IV)
	})

	t.Run("other fingerprint cannot open", func(t *testing.T) {
		rec, err := c.Encrypt(secret)
		require.NoError(t, err)
		_, err = newTestCipher(t, "other-device").Decrypt(rec)
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		rec, err := c.Encrypt(secret)
		require.NoError(t, err)
		rec.Ciphertext[0] ^= 0xff
		_, err = c.Decrypt(rec)
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("unknown schema", func(t *testing.T) {
		rec, err := c.Encrypt(secret)
		require.NoError(t, err)
		rec.SchemaVersion = 99
		_, err = c.Decrypt(rec)
		assert.ErrorIs(t, err, ErrDecrypt)
	})
}

func TestDeriveIdentityHandle(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, 32)
	first := DeriveIdentityHandle(secret)
	assert.Len(t, first, 64)
	assert.Equal(t, first, DeriveIdentityHandle(secret))
	assert.Regexp(t, `^[0-9a-f]{64}$`, first)
	assert.NotEqual(t, first, DeriveIdentityHandle(bytes.Repeat([]byte{0x43}, 32)))
}

func TestFingerprintIgnoresBrowserPatchVersion(t *testing.T) {
	base := Fingerprint{Locale: "en_US.UTF-8", TZOffsetMinutes: 60, Cores: 8}

	older := base
	older.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.109 Safari/537.36"
	newer := base
	newer.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.224 Safari/537.36"

	assert.Equal(t, older.String(), newer.String())

	withScreen := older
	withScreen.Screen = "2560x1440"
	assert.NotEqual(t, older.String(), withScreen.String())
}

func TestNewCipherRejectsShortKey(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.Error(t, err)
}
