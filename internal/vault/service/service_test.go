package service

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"zkvault/internal/vault/crypto"
	"zkvault/internal/vault/mnemonic"
	"zkvault/internal/vault/models"
	"zkvault/internal/vault/store"
	dErrors "zkvault/pkg/domain-errors"
)

// countingStore records successful writes to the wrapped store.
type countingStore struct {
	*store.InMemoryStore
	writes      atomic.Int32
	beforeWrite func()
}

func (c *countingStore) CreateIfAbsent(ctx context.Context, raw []byte) (bool, error) {
	if c.beforeWrite != nil {
		c.beforeWrite()
	}
	ok, err := c.InMemoryStore.CreateIfAbsent(ctx, raw)
	if ok {
		c.writes.Add(1)
	}
	return ok, err
}

func (c *countingStore) CompareAndSwap(ctx context.Context, old, next []byte) (bool, error) {
	ok, err := c.InMemoryStore.CompareAndSwap(ctx, old, next)
	if ok {
		c.writes.Add(1)
	}
	return ok, err
}

func (c *countingStore) Put(ctx context.Context, raw []byte) error {
	c.writes.Add(1)
	return c.InMemoryStore.Put(ctx, raw)
}

type VaultServiceSuite struct {
	suite.Suite
	ctx    context.Context
	store  *countingStore
	cipher *crypto.Cipher
	svc    *Service
}

func TestVaultServiceSuite(t *testing.T) {
	suite.Run(t, new(VaultServiceSuite))
}

func (s *VaultServiceSuite) SetupSuite() {
	c, err := crypto.NewCipher(crypto.DeriveKey("suite-device"))
	s.Require().NoError(err)
	s.cipher = c
}

func (s *VaultServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = &countingStore{InMemoryStore: store.NewInMemoryStore()}
	s.svc = New(s.store, s.cipher)
}

func (s *VaultServiceSuite) TestGetOrCreateRootSecret() {
	s.Run("creates once and stays stable", func() {
		first, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Len(first, models.SecretSize)

		second, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Equal(first, second)
		s.Equal(int32(1), s.store.writes.Load())

		raw, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.True(models.IsEncrypted(raw))
		s.NotContains(string(raw), hex.EncodeToString(first))
	})

	s.Run("returned slice is a copy", func() {
		first, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		want := append([]byte{}, first...)
		crypto.Wipe(first)

		again, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, again)
	})
}

func (s *VaultServiceSuite) TestConcurrentCallersConverge() {
	// two services over one store model two processes racing on first run
	other := New(s.store, s.cipher)

	const callers = 32
	results := make([][]byte, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc := s.svc
			if i%2 == 1 {
				svc = other
			}
			secret, err := svc.GetOrCreateRootSecret(s.ctx)
			assert.NoError(s.T(), err)
			results[i] = secret
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		s.Equal(results[0], results[i])
	}
	s.Equal(int32(1), s.store.writes.Load())
}

func (s *VaultServiceSuite) TestCreateRaceLoserReloadsWinner() {
	winner, err := crypto.GenerateSecret()
	s.Require().NoError(err)
	winnerRecord, err := s.cipher.Encrypt(winner)
	s.Require().NoError(err)
	winnerRaw, err := winnerRecord.Marshal()
	s.Require().NoError(err)

	var once sync.Once
	s.store.beforeWrite = func() {
		once.Do(func() {
			s.Require().NoError(s.store.InMemoryStore.Put(s.ctx, winnerRaw))
		})
	}

	secret, err := s.svc.GetOrCreateRootSecret(s.ctx)
	s.Require().NoError(err)
	s.Equal(winner, secret)
	s.Equal(int32(0), s.store.writes.Load())
}

func (s *VaultServiceSuite) TestLegacyMigration() {
	legacySecret := []byte(strings.Repeat("\x5a", models.SecretSize))
	legacy := []byte(hex.EncodeToString(legacySecret))

	s.Run("legacy record is not encrypted", func() {
		s.False(models.IsEncrypted(legacy))
	})

	s.Run("first read re-encrypts exactly once", func() {
		s.Require().NoError(s.store.InMemoryStore.Put(s.ctx, legacy))

		secret, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Equal(legacySecret, secret)
		s.Equal(int32(1), s.store.writes.Load())

		raw, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.True(models.IsEncrypted(raw))

		again, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Equal(legacySecret, again)
		s.Equal(int32(1), s.store.writes.Load())
	})
}

func (s *VaultServiceSuite) TestConcurrentMigrationWritesOnce() {
	legacySecret := []byte(strings.Repeat("\x11", models.SecretSize))
	s.Require().NoError(s.store.InMemoryStore.Put(s.ctx, []byte(`"`+hex.EncodeToString(legacySecret)+`"`)))

	services := []*Service{s.svc, New(s.store, s.cipher), New(s.store, s.cipher)}
	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc *Service) {
			defer wg.Done()
			secret, err := svc.GetOrCreateRootSecret(s.ctx)
			assert.NoError(s.T(), err)
			assert.Equal(s.T(), legacySecret, secret)
		}(svc)
	}
	wg.Wait()
	s.Equal(int32(1), s.store.writes.Load())
}

func (s *VaultServiceSuite) TestIntegrityFailureRegenerates() {
	s.Run("record sealed under another device", func() {
		foreign, err := crypto.NewCipher(crypto.DeriveKey("another-device"))
		s.Require().NoError(err)
		rec, err := foreign.Encrypt(make([]byte, models.SecretSize))
		s.Require().NoError(err)
		raw, err := rec.Marshal()
		s.Require().NoError(err)
		s.Require().NoError(s.store.InMemoryStore.Put(s.ctx, raw))

		secret, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.NotEqual(make([]byte, models.SecretSize), secret)

		again, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Equal(secret, again)
	})

	s.Run("garbage record", func() {
		s.Require().NoError(s.store.InMemoryStore.Put(s.ctx, []byte("not a secret")))

		secret, err := s.svc.GetOrCreateRootSecret(s.ctx)
		s.Require().NoError(err)
		s.Len(secret, models.SecretSize)

		raw, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.True(models.IsEncrypted(raw))
	})
}

func (s *VaultServiceSuite) TestIdentityHandle() {
	first, err := s.svc.IdentityHandle(s.ctx)
	s.Require().NoError(err)
	s.Len(first, 64)

	again, err := New(s.store, s.cipher).IdentityHandle(s.ctx)
	s.Require().NoError(err)
	s.Equal(first, again)
}

func (s *VaultServiceSuite) TestMnemonic() {
	s.Run("export then import restores the identity", func() {
		handle, err := s.svc.IdentityHandle(s.ctx)
		s.Require().NoError(err)
		words, err := s.svc.ExportMnemonic(s.ctx)
		s.Require().NoError(err)
		s.Len(words, 24)

		fresh := New(&countingStore{InMemoryStore: store.NewInMemoryStore()}, s.cipher)
		imported, err := fresh.ImportMnemonic(s.ctx, words)
		s.Require().NoError(err)
		s.Equal(handle, imported)

		restored, err := fresh.IdentityHandle(s.ctx)
		s.Require().NoError(err)
		s.Equal(handle, restored)
	})

	s.Run("12-word phrase cannot hold a root secret", func() {
		words, err := mnemonic.SecretToWords(make([]byte, 16))
		s.Require().NoError(err)

		_, err = s.svc.ImportMnemonic(s.ctx, words)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(mnemonic.KindInvalidSecretLength, mnemonic.KindOf(err))
	})

	s.Run("unknown word is a validation error", func() {
		words := strings.Fields(strings.Repeat("abandon ", 23) + "zzzz")
		_, err := s.svc.ImportMnemonic(s.ctx, words)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(mnemonic.KindUnknownWord, mnemonic.KindOf(err))
	})
}

func TestDecodeLegacy(t *testing.T) {
	secret := []byte(strings.Repeat("\x01", models.SecretSize))
	got, ok := decodeLegacy([]byte(hex.EncodeToString(secret)))
	require.True(t, ok)
	assert.Equal(t, secret, got)

	_, ok = decodeLegacy([]byte("abcd"))
	assert.False(t, ok)
}
