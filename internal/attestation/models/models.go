package models

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"time"

	"zkvault/pkg/domain"
)

// Attestation is a generated claim about the user. PublicClaim holds only the
// fields a relying party may see; private evidence never reaches it.
type Attestation struct {
	ClaimType   domain.ClaimType `json:"claimType"`
	ProofBytes  []byte           `json:"proofBytes"`
	PublicClaim map[string]any   `json:"publicClaim"`
	GeneratedAt time.Time        `json:"generatedAt"`
	ExpiresAt   time.Time        `json:"expiresAt"`
}

// IsExpired reports whether the attestation is no longer usable at now.
func (a *Attestation) IsExpired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// ProofHash is the hex SHA-256 of the proof bytes, the attestation's public
// commitment.
func (a *Attestation) ProofHash() string {
	sum := sha256.Sum256(a.ProofBytes)
	return hex.EncodeToString(sum[:])
}

// Clone returns a copy that shares no mutable state with a.
func (a *Attestation) Clone() *Attestation {
	if a == nil {
		return nil
	}
	out := *a
	out.ProofBytes = append([]byte(nil), a.ProofBytes...)
	out.PublicClaim = maps.Clone(a.PublicClaim)
	return &out
}

// Field describes one piece of information for the consent surface.
type Field struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Value       any    `json:"value,omitempty"`
}

// Disclosure lists what a relying party will and will not learn.
type Disclosure struct {
	Disclosed []Field `json:"disclosed"`
	Hidden    []Field `json:"hidden"`
}

var publicFieldDescriptions = map[domain.ClaimType][]Field{
	domain.ClaimCountry: {
		{Name: "countryCode", Description: "ISO country code"},
		{Name: "countryName", Description: "Country name"},
	},
	domain.ClaimEmailDomain: {
		{Name: "domain", Description: "Email domain"},
		{Name: "domainHash", Description: "Hash of the email domain"},
		{Name: "commitment", Description: "Commitment to the DKIM signature"},
	},
	domain.ClaimAge: {
		{Name: "minimumAge", Description: "Minimum age proven"},
	},
}

var hiddenFieldDescriptions = map[domain.ClaimType][]Field{
	domain.ClaimCountry: {
		{Name: "location", Description: "Exact location or coordinates"},
	},
	domain.ClaimEmailDomain: {
		{Name: "email", Description: "Full email address"},
		{Name: "message", Description: "Email headers and body"},
	},
	domain.ClaimAge: {
		{Name: "birthDate", Description: "Date of birth"},
	},
}

// DescribeDisclosure builds the consent view for att. Disclosed fields carry
// their values from the public claim.
func DescribeDisclosure(att *Attestation) Disclosure {
	d := Disclosure{Hidden: append([]Field(nil), hiddenFieldDescriptions[att.ClaimType]...)}
	for _, f := range publicFieldDescriptions[att.ClaimType] {
		if v, ok := att.PublicClaim[f.Name]; ok {
			f.Value = v
		}
		d.Disclosed = append(d.Disclosed, f)
	}
	d.Disclosed = append(d.Disclosed,
		Field{Name: "proofHash", Description: "Proof commitment", Value: att.ProofHash()},
		Field{Name: "identityHash", Description: "Pseudonymous identity handle, shared across sites"},
	)
	return d
}

// PublicFields returns the claim-specific fields sent to relying-party
// backends, in the wire names they expect.
func PublicFields(att *Attestation) map[string]any {
	out := make(map[string]any)
	for _, f := range publicFieldDescriptions[att.ClaimType] {
		if v, ok := att.PublicClaim[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}
