package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"zkvault/internal/attestation/models"
	"zkvault/internal/audit"
	"zkvault/internal/evidence/dkim"
	"zkvault/internal/proofengine"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/sentinel"
	"zkvault/pkg/requestcontext"
)

// Store persists one attestation per claim type. Save replaces wholesale.
type Store interface {
	Load(ctx context.Context, claim domain.ClaimType) (*models.Attestation, error)
	Save(ctx context.Context, att *models.Attestation) error
	Delete(ctx context.Context, claim domain.ClaimType) error
	List(ctx context.Context) ([]*models.Attestation, error)
}

// ExpiryProvider supplies the validity period for new attestations.
type ExpiryProvider interface {
	ExpiryDays(ctx context.Context) int
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// ErrProofNotGenerated marks an engine refusal or failure.
var ErrProofNotGenerated = errors.New("proof not generated")

// Service reads and writes attestations and drives generation through the
// proof engine.
type Service struct {
	store   Store
	engine  proofengine.Engine
	expiry  ExpiryProvider
	parser  *dkim.Parser
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

func WithParser(parser *dkim.Parser) Option {
	return func(s *Service) {
		s.parser = parser
	}
}

func New(store Store, engine proofengine.Engine, expiry ExpiryProvider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		engine: engine,
		expiry: expiry,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = dkim.NewParser(dkim.WithLogger(s.logger))
	}
	return s
}

// Find returns the stored attestation for claim, or nil when there is none.
// A record that no longer decodes is logged and treated as absent.
func (s *Service) Find(ctx context.Context, claim domain.ClaimType) (*models.Attestation, error) {
	att, err := s.store.Load(ctx, claim)
	switch {
	case err == nil:
		return att, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, nil
	case errors.Is(err, sentinel.ErrCorrupt):
		s.logger.ErrorContext(ctx, "attestation record unreadable; treating as absent",
			"request_id", requestcontext.RequestID(ctx),
			"claim_type", claim,
		)
		return nil, nil
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attestation")
	}
}

func (s *Service) List(ctx context.Context) ([]*models.Attestation, error) {
	atts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attestations")
	}
	return atts, nil
}

// Prepare validates evidence before any generation starts. Email evidence is
// parsed into its DKIM triple and the raw message is scrubbed, whether or not
// parsing succeeds.
func (s *Service) Prepare(ctx context.Context, evidence models.Evidence) (models.Evidence, error) {
	switch ev := evidence.(type) {
	case *models.EmailEvidence:
		defer ev.Scrub()
		triple, err := s.parser.Parse(ctx, ev.Raw)
		if err != nil {
			return nil, err
		}
		return &models.DKIMEvidence{Triple: triple}, nil
	case *models.CountryEvidence:
		if ev.CountryCode == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "countryCode is required")
		}
		return ev, nil
	case *models.AgeEvidence:
		if ev.BirthDate.IsZero() || ev.MinimumAge <= 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "birthDate and a positive minimumAge are required")
		}
		return ev, nil
	case *models.DKIMEvidence:
		return ev, nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unsupported evidence")
	}
}

// Generate runs the proof engine and returns the new attestation without
// saving it. Evidence is scrubbed when the engine returns.
func (s *Service) Generate(ctx context.Context, claim domain.ClaimType, evidence models.Evidence) (*models.Attestation, error) {
	prepared, err := s.Prepare(ctx, evidence)
	if err != nil {
		return nil, err
	}
	defer prepared.Scrub()
	if prepared.ClaimType() != claim {
		return nil, dErrors.New(dErrors.CodeBadRequest, "evidence does not match claim type")
	}

	started := time.Now()
	result, err := s.engine.Generate(ctx, claim, prepared)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.ErrorContext(ctx, "proof engine failed",
			"request_id", requestcontext.RequestID(ctx),
			"claim_type", claim,
			"error", err,
		)
		return nil, dErrors.Wrap(ErrProofNotGenerated, dErrors.CodeUnavailable, "proof engine failed")
	}
	if !result.Success {
		s.logger.InfoContext(ctx, "proof generation refused",
			"request_id", requestcontext.RequestID(ctx),
			"claim_type", claim,
			"reason", result.Error,
		)
		return nil, dErrors.Wrap(ErrProofNotGenerated, dErrors.CodeInvariantViolation, "proof generation failed: "+result.Error)
	}

	now := requestcontext.Now(ctx)
	att := &models.Attestation{
		ClaimType:   claim,
		ProofBytes:  result.ProofBytes,
		PublicClaim: result.PublicClaim,
		GeneratedAt: now,
		ExpiresAt:   now.AddDate(0, 0, s.expiry.ExpiryDays(ctx)),
	}
	s.logger.InfoContext(ctx, "proof generated",
		"request_id", requestcontext.RequestID(ctx),
		"claim_type", claim,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return att, nil
}

// Save replaces the stored attestation for att's claim type.
func (s *Service) Save(ctx context.Context, att *models.Attestation) error {
	if err := s.store.Save(ctx, att); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save attestation")
	}
	s.emit(ctx, audit.EventAttestationGenerated, att.ClaimType)
	return nil
}

// GenerateAndSave is the direct generation path used outside a disclosure.
func (s *Service) GenerateAndSave(ctx context.Context, claim domain.ClaimType, evidence models.Evidence) (*models.Attestation, error) {
	att, err := s.Generate(ctx, claim, evidence)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

// Delete removes the attestation for claim. Deleting a missing one is a no-op.
func (s *Service) Delete(ctx context.Context, claim domain.ClaimType) error {
	if err := s.store.Delete(ctx, claim); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete attestation")
	}
	s.emit(ctx, audit.EventAttestationDeleted, claim)
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, claim domain.ClaimType) {
	s.logger.InfoContext(ctx, string(action),
		"request_id", requestcontext.RequestID(ctx),
		"claim_type", claim,
	)
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{Action: action, ClaimType: string(claim)})
	}
}
