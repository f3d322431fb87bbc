package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"zkvault/internal/settings/models"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/sentinel"
)

type Store interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
}

// Service reads and updates user settings. A missing or corrupt record reads
// as the defaults.
type Service struct {
	store  Store
	mu     sync.Mutex
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Get(ctx context.Context) (models.Settings, error) {
	settings, err := s.store.Load(ctx)
	switch {
	case err == nil:
		return settings, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return models.Default(), nil
	case errors.Is(err, sentinel.ErrCorrupt):
		s.logger.WarnContext(ctx, "settings record unreadable; using defaults")
		return models.Default(), nil
	default:
		return models.Settings{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
}

// Update applies patch atomically with respect to other updates in this process.
func (s *Service) Update(ctx context.Context, patch models.Patch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return models.Settings{}, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return models.Settings{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
	}
	return next, nil
}

// ExpiryDays is the validity period for newly generated attestations. Load
// failures fall back to the default.
func (s *Service) ExpiryDays(ctx context.Context) int {
	settings, err := s.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "settings unavailable; using default expiry", "error", err)
		return models.DefaultExpiryDays
	}
	return settings.ExpiryDays
}
