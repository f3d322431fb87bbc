package service

import (
	"context"

	attestation "zkvault/internal/attestation/models"
	"zkvault/internal/audit"
	"zkvault/internal/broker/models"
	"zkvault/internal/policy"
	"zkvault/internal/registration"
	settings "zkvault/internal/settings/models"
	"zkvault/pkg/domain"
)

// AttestationService is the attestation store plus generation.
type AttestationService interface {
	Find(ctx context.Context, claim domain.ClaimType) (*attestation.Attestation, error)
	Prepare(ctx context.Context, evidence attestation.Evidence) (attestation.Evidence, error)
	Generate(ctx context.Context, claim domain.ClaimType, evidence attestation.Evidence) (*attestation.Attestation, error)
	Save(ctx context.Context, att *attestation.Attestation) error
}

type PermissionService interface {
	IsGranted(ctx context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error)
	Grant(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error
}

type SettingsProvider interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// ConsentPolicy decides whether a freshly generated attestation may skip
// the consent surface.
type ConsentPolicy interface {
	AutoApprove(ctx context.Context, in policy.Input) (bool, error)
}

type Registrar interface {
	Register(ctx context.Context, att *attestation.Attestation, backendURL string) (*registration.Result, error)
}

// Surfaces shows and hides interactive surfaces. Implementations must not
// block on the user.
type Surfaces interface {
	Open(ctx context.Context, view models.SurfaceView)
	Close(ctx context.Context, requestID string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}
