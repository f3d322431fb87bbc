package models

import (
	"time"

	attestation "zkvault/internal/attestation/models"
	"zkvault/internal/registration"
	"zkvault/pkg/domain"
)

// State is the position of a disclosure request in the broker state machine.
type State string

const (
	StateReceived           State = "received"
	StateNoAttestation      State = "no_attestation"
	StateExpired            State = "expired"
	StateAwaitingPermission State = "awaiting_permission"
	StateApproved           State = "approved"
	StateDelivered          State = "delivered"
	StateDenied             State = "denied"
)

// NeedsGeneration reports whether the request waits on a generation surface.
func (s State) NeedsGeneration() bool {
	return s == StateNoAttestation || s == StateExpired
}

// SurfaceKind is the interactive surface a pending request is waiting on.
type SurfaceKind string

const (
	SurfaceGeneration SurfaceKind = "generation"
	SurfaceConsent    SurfaceKind = "consent"
)

type RegistrationStatus string

const (
	RegistrationRegistered   RegistrationStatus = "registered"
	RegistrationSkipped      RegistrationStatus = "skipped"
	RegistrationFailed       RegistrationStatus = "failed"
	RegistrationNotRequested RegistrationStatus = "not_requested"
)

// DisclosureRequest is what an origin asks for. BackendURL is only used when
// AutoRegister is set.
type DisclosureRequest struct {
	RequestID    string
	Origin       domain.Origin
	ClaimType    domain.ClaimType
	AutoRegister bool
	BackendURL   string
}

// AttestationView carries only the public parts of an attestation.
type AttestationView struct {
	ClaimType   domain.ClaimType `json:"claimType"`
	ProofBytes  []byte           `json:"proofBytes"`
	ProofHash   string           `json:"proofHash"`
	PublicClaim map[string]any   `json:"publicClaim"`
	GeneratedAt time.Time        `json:"generatedAt"`
	ExpiresAt   time.Time        `json:"expiresAt"`
}

func NewAttestationView(att *attestation.Attestation) AttestationView {
	return AttestationView{
		ClaimType:   att.ClaimType,
		ProofBytes:  att.ProofBytes,
		ProofHash:   att.ProofHash(),
		PublicClaim: att.PublicClaim,
		GeneratedAt: att.GeneratedAt,
		ExpiresAt:   att.ExpiresAt,
	}
}

// Disclosure is the successful reply to an origin. Registration is nil unless
// the backend registered the user.
type Disclosure struct {
	RequestID          string               `json:"requestId"`
	Attestation        AttestationView      `json:"attestation"`
	Registration       *registration.Result `json:"registration"`
	RegistrationStatus RegistrationStatus   `json:"registrationStatus"`
}

// Outcome resolves a disclosure exactly once: either Disclosure or Err is set.
type Outcome struct {
	Disclosure *Disclosure
	Err        error
}

// SurfaceView is what an interactive surface renders.
type SurfaceView struct {
	ID         string                  `json:"id"`
	RequestID  string                  `json:"requestId"`
	Kind       SurfaceKind             `json:"kind"`
	Origin     domain.Origin           `json:"origin"`
	ClaimType  domain.ClaimType        `json:"claimType"`
	Disclosure *attestation.Disclosure `json:"disclosure,omitempty"`
	OpenedAt   time.Time               `json:"openedAt"`
	Deadline   time.Time               `json:"deadline"`
}

// PendingView is a snapshot of a pending request.
type PendingView struct {
	RequestID  string                  `json:"requestId"`
	Origin     domain.Origin           `json:"origin"`
	ClaimType  domain.ClaimType        `json:"claimType"`
	State      State                   `json:"state"`
	Surface    SurfaceKind             `json:"surface"`
	Deadline   time.Time               `json:"deadline"`
	Generating bool                    `json:"generating"`
	LastError  string                  `json:"lastError,omitempty"`
	Disclosure *attestation.Disclosure `json:"disclosure,omitempty"`
}
