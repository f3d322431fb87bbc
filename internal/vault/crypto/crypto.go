// Package crypto seals the root secret with AES-256-GCM under a key derived
// from a device fingerprint.
//
// The fingerprint is not a secret. Anyone who can reproduce the same device
// profile can derive the same key, so this only raises the cost of casually
// inspecting stored data. It is not confidentiality at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"zkvault/internal/vault/models"
)

const (
	// Iterations is the PBKDF2 work factor.
	Iterations = 100_000
	keySize    = 32
)

var salt = []byte("zkvault-root-secret-v1")

// ErrDecrypt is returned for any record that fails authentication or has an
// unknown layout. It never carries record contents.
var ErrDecrypt = errors.New("root secret record failed integrity check")

// DeriveKey stretches the fingerprint into an AES-256 key.
func DeriveKey(fingerprint string) []byte {
	return pbkdf2.Key([]byte(fingerprint), salt, Iterations, keySize, sha256.New)
}

// Cipher seals and opens root secret records.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("vault key must be %d bytes", keySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals secret under a fresh random IV.
func (c *Cipher) Encrypt(secret []byte) (*models.EncryptedSecret, error) {
	iv := make([]byte, models.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("could not generate iv: %w", err)
	}
	return &models.EncryptedSecret{
		Ciphertext:    c.aead.Seal(nil, iv, secret, nil),
		IV:            iv,
		SchemaVersion: models.SchemaVersion,
	}, nil
}

// Decrypt opens rec. Every failure is ErrDecrypt.
func (c *Cipher) Decrypt(rec *models.EncryptedSecret) ([]byte, error) {
	if rec == nil || rec.SchemaVersion != models.SchemaVersion || len(rec.IV) != models.IVSize {
		return nil, ErrDecrypt
	}
	plain, err := c.aead.Open(nil, rec.IV, rec.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// GenerateSecret returns a fresh root secret from crypto/rand.
func GenerateSecret() ([]byte, error) {
	buf := make([]byte, models.SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("could not generate secret: %w", err)
	}
	return buf, nil
}

// DeriveIdentityHandle is the lowercase hex SHA-256 of the secret.
func DeriveIdentityHandle(secret []byte) string {
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:])
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	clear(b)
}
