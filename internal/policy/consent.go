// Package policy evaluates the consent policy that decides whether a freshly
// generated attestation may be disclosed without showing a consent surface.
package policy

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/open-policy-agent/opa/rego"

	"zkvault/pkg/domain"
)

const consentQuery = "data.zkvault.consent.auto_approve"

//go:embed consent.rego
var consentModule string

// Input is the document the policy sees as `input`.
type Input struct {
	Origin      string           `json:"origin"`
	ClaimType   string           `json:"claimType"`
	Settings    SettingsInput    `json:"settings"`
	Attestation AttestationInput `json:"attestation"`
}

type SettingsInput struct {
	AutoApprove bool `json:"autoApprove"`
	ExpiryDays  int  `json:"expiryDays"`
}

type AttestationInput struct {
	Fresh     bool      `json:"fresh"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConsentPolicy is a prepared rego query.
type ConsentPolicy struct {
	query rego.PreparedEvalQuery
}

// NewConsentPolicy compiles the embedded policy.
func NewConsentPolicy(ctx context.Context) (*ConsentPolicy, error) {
	return NewConsentPolicyFromSource(ctx, consentModule)
}

// NewConsentPolicyFromSource compiles a replacement policy. The module must
// define data.zkvault.consent.auto_approve.
func NewConsentPolicyFromSource(ctx context.Context, source string) (*ConsentPolicy, error) {
	prepared, err := rego.New(
		rego.Query(consentQuery),
		rego.Module("consent.rego", source),
		rego.StrictBuiltinErrors(true),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare consent policy: %w", err)
	}
	return &ConsentPolicy{query: prepared}, nil
}

// AutoApprove reports whether the disclosure described by in may skip consent.
func (p *ConsentPolicy) AutoApprove(ctx context.Context, in Input) (bool, error) {
	if p == nil {
		return false, errors.New("consent policy is nil")
	}
	results, err := p.query.Eval(ctx, rego.EvalInput(in))
	if err != nil {
		return false, fmt.Errorf("evaluate consent policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("consent policy returned %T, want bool", results[0].Expressions[0].Value)
	}
	return allowed, nil
}

// NewInput assembles the policy input for a disclosure.
func NewInput(origin domain.Origin, claim domain.ClaimType, autoApprove bool, expiryDays int, expiresAt, now time.Time) Input {
	return Input{
		Origin:    origin.String(),
		ClaimType: claim.String(),
		Settings:  SettingsInput{AutoApprove: autoApprove, ExpiryDays: expiryDays},
		Attestation: AttestationInput{
			Fresh:     now.Before(expiresAt),
			ExpiresAt: expiresAt,
		},
	}
}
