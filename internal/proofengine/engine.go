// Package proofengine is the boundary to the external prover. The broker and
// attestation service only see Engine; adapters live in subpackages.
package proofengine

import (
	"context"

	"zkvault/internal/attestation/models"
	"zkvault/pkg/domain"
)

// Result is what an engine returns for one generation. Success false with an
// Error message is a refusal, not a transport failure.
type Result struct {
	Success     bool           `json:"success"`
	PublicClaim map[string]any `json:"publicClaim,omitempty"`
	ProofBytes  []byte         `json:"proofBytes,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Engine turns private evidence into proof bytes and a public claim.
// Implementations must not retain evidence after Generate returns.
type Engine interface {
	Generate(ctx context.Context, claim domain.ClaimType, evidence models.Evidence) (*Result, error)
}

// Failed builds a refusal result.
func Failed(msg string) *Result {
	return &Result{Success: false, Error: msg}
}
