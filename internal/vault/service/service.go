package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"zkvault/internal/audit"
	"zkvault/internal/vault/crypto"
	"zkvault/internal/vault/metrics"
	"zkvault/internal/vault/mnemonic"
	"zkvault/internal/vault/models"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/sentinel"
)

// maxAttempts bounds reload loops when another writer keeps winning races.
const maxAttempts = 4

// Store persists the single root secret record.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	CreateIfAbsent(ctx context.Context, raw []byte) (bool, error)
	CompareAndSwap(ctx context.Context, old, next []byte) (bool, error)
	Put(ctx context.Context, raw []byte) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service custodies the root secret. Plaintext only lives in memory.
type Service struct {
	store   Store
	cipher  *crypto.Cipher
	group   singleflight.Group
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, cipher *crypto.Cipher, opts ...Option) *Service {
	s := &Service{store: store, cipher: cipher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateRootSecret returns the decrypted root secret, creating it on
// first use. Concurrent callers share one load; cross-process creators
// converge on whichever record the store accepted first.
func (s *Service) GetOrCreateRootSecret(ctx context.Context) ([]byte, error) {
	v, err, _ := s.group.Do("root", func() (any, error) {
		return s.loadOrCreate(ctx)
	})
	if err != nil {
		return nil, err
	}
	return bytes.Clone(v.([]byte)), nil
}

// IdentityHandle is the stable pseudonymous identity derived from the secret.
func (s *Service) IdentityHandle(ctx context.Context) (string, error) {
	secret, err := s.GetOrCreateRootSecret(ctx)
	if err != nil {
		return "", err
	}
	defer crypto.Wipe(secret)
	return crypto.DeriveIdentityHandle(secret), nil
}

// ExportMnemonic renders the root secret as a 24-word phrase.
func (s *Service) ExportMnemonic(ctx context.Context) ([]string, error) {
	secret, err := s.GetOrCreateRootSecret(ctx)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(secret)
	words, err := mnemonic.SecretToWords(secret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode root secret")
	}
	return words, nil
}

// ImportMnemonic replaces the root secret with the one encoded by words.
// Only 24-word phrases carry a full root secret.
func (s *Service) ImportMnemonic(ctx context.Context, words []string) (string, error) {
	secret, err := mnemonic.WordsToSecret(words)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	defer crypto.Wipe(secret)
	if len(secret) != models.SecretSize {
		merr := &mnemonic.MnemonicError{Kind: mnemonic.KindInvalidSecretLength}
		return "", dErrors.Wrap(merr, dErrors.CodeValidation, "root secret phrases have 24 words")
	}

	raw, err := s.seal(secret)
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, raw); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store root secret")
	}
	s.record(ctx, audit.EventSecretImported, "imported")
	return crypto.DeriveIdentityHandle(secret), nil
}

func (s *Service) loadOrCreate(ctx context.Context) ([]byte, error) {
	for range maxAttempts {
		raw, err := s.store.Load(ctx)
		if errors.Is(err, sentinel.ErrNotFound) {
			secret, created, err := s.create(ctx)
			if err != nil || created {
				return secret, err
			}
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load root secret")
		}

		if !models.IsEncrypted(raw) {
			secret, done, err := s.migrate(ctx, raw)
			if err != nil || done {
				return secret, err
			}
			continue
		}

		secret, err := s.open(raw)
		if err == nil {
			return secret, nil
		}
		secret, done, err := s.regenerate(ctx, raw)
		if err != nil || done {
			return secret, err
		}
	}
	return nil, dErrors.New(dErrors.CodeConflict, "root secret kept changing during load")
}

func (s *Service) create(ctx context.Context) ([]byte, bool, error) {
	secret, err := crypto.GenerateSecret()
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate root secret")
	}
	raw, err := s.seal(secret)
	if err != nil {
		return nil, false, err
	}
	created, err := s.store.CreateIfAbsent(ctx, raw)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store root secret")
	}
	if !created {
		crypto.Wipe(secret)
		return nil, false, nil
	}
	s.record(ctx, audit.EventSecretCreated, "created")
	return secret, true, nil
}

// migrate re-encrypts a legacy plaintext record. The write is a swap
// against the legacy bytes so exactly one migrator succeeds.
func (s *Service) migrate(ctx context.Context, legacy []byte) ([]byte, bool, error) {
	secret, ok := decodeLegacy(legacy)
	if !ok {
		return s.regenerate(ctx, legacy)
	}
	raw, err := s.seal(secret)
	if err != nil {
		return nil, false, err
	}
	swapped, err := s.store.CompareAndSwap(ctx, legacy, raw)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to migrate root secret")
	}
	if !swapped {
		crypto.Wipe(secret)
		return nil, false, nil
	}
	s.logger.InfoContext(ctx, "legacy root secret re-encrypted")
	s.record(ctx, audit.EventSecretMigrated, "migrated")
	return secret, true, nil
}

// regenerate replaces an unreadable record with a fresh secret. The identity
// handle changes; there is nothing to recover.
func (s *Service) regenerate(ctx context.Context, corrupt []byte) ([]byte, bool, error) {
	s.logger.ErrorContext(ctx, "root secret record unreadable; generating a new identity")
	secret, err := crypto.GenerateSecret()
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate root secret")
	}
	raw, err := s.seal(secret)
	if err != nil {
		return nil, false, err
	}
	swapped, err := s.store.CompareAndSwap(ctx, corrupt, raw)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to replace root secret")
	}
	if !swapped {
		crypto.Wipe(secret)
		return nil, false, nil
	}
	s.record(ctx, audit.EventSecretRegenerated, "regenerated")
	return secret, true, nil
}

func (s *Service) seal(secret []byte) ([]byte, error) {
	rec, err := s.cipher.Encrypt(secret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt root secret")
	}
	raw, err := rec.Marshal()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode root secret")
	}
	return raw, nil
}

func (s *Service) open(raw []byte) ([]byte, error) {
	rec, err := models.UnmarshalEncrypted(raw)
	if err != nil {
		return nil, crypto.ErrDecrypt
	}
	return s.cipher.Decrypt(rec)
}

// decodeLegacy accepts the bare hex string older builds stored, with or
// without JSON quotes.
func decodeLegacy(raw []byte) ([]byte, bool) {
	text := bytes.Trim(bytes.TrimSpace(raw), `"`)
	secret := make([]byte, hex.DecodedLen(len(text)))
	n, err := hex.Decode(secret, text)
	if err != nil || n != models.SecretSize {
		return nil, false
	}
	return secret, true
}

func (s *Service) record(ctx context.Context, event audit.AuditEvent, op string) {
	s.metrics.IncrementOperation(op)
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{Action: event})
	}
}
