package service

import (
	"context"
	"log/slog"

	"zkvault/internal/audit"
	"zkvault/internal/permission/models"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/requestcontext"
)

// Store persists grants. Put must not overwrite an existing grant.
type Store interface {
	Put(ctx context.Context, grant models.Grant) error
	Delete(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error
	Exists(ctx context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error)
	ListByOrigin(ctx context.Context, origin domain.Origin) ([]models.Grant, error)
	ListOrigins(ctx context.Context) ([]domain.Origin, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the permission registry. Grants only come from an explicit
// approval recorded by the broker; nothing here infers one.
type Service struct {
	store   Store
	logger  *slog.Logger
	auditor AuditPublisher
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grant records approval. Granting twice is a no-op.
func (s *Service) Grant(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error {
	grant := models.Grant{Origin: origin, ClaimType: claim, GrantedAt: requestcontext.Now(ctx)}
	if err := s.store.Put(ctx, grant); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record permission")
	}
	s.emit(ctx, audit.EventPermissionGranted, origin, claim)
	return nil
}

// Revoke deletes the grant. Revoking a missing grant is a no-op.
func (s *Service) Revoke(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error {
	if err := s.store.Delete(ctx, origin, claim); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke permission")
	}
	s.emit(ctx, audit.EventPermissionRevoked, origin, claim)
	return nil
}

func (s *Service) IsGranted(ctx context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error) {
	ok, err := s.store.Exists(ctx, origin, claim)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check permission")
	}
	return ok, nil
}

// ListGrants returns the claim types origin may receive.
func (s *Service) ListGrants(ctx context.Context, origin domain.Origin) ([]domain.ClaimType, error) {
	grants, err := s.store.ListByOrigin(ctx, origin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list permissions")
	}
	out := make([]domain.ClaimType, len(grants))
	for i, g := range grants {
		out[i] = g.ClaimType
	}
	return out, nil
}

// ListDetailed returns the full grant records for origin.
func (s *Service) ListDetailed(ctx context.Context, origin domain.Origin) ([]models.Grant, error) {
	grants, err := s.store.ListByOrigin(ctx, origin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list permissions")
	}
	return grants, nil
}

func (s *Service) ListOrigins(ctx context.Context) ([]domain.Origin, error) {
	origins, err := s.store.ListOrigins(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list origins")
	}
	return origins, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, origin domain.Origin, claim domain.ClaimType) {
	s.logger.InfoContext(ctx, string(action),
		"request_id", requestcontext.RequestID(ctx),
		"origin", origin,
		"claim_type", claim,
	)
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{Action: action, Origin: string(origin), ClaimType: string(claim)})
	}
}
