package models

import (
	"time"

	"zkvault/internal/evidence/dkim"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
)

// Evidence is private input to the proof engine. It is never persisted and
// must be scrubbed once the engine returns. The set of variants is closed.
type Evidence interface {
	ClaimType() domain.ClaimType
	Scrub()
	isEvidence()
}

// CountryEvidence names the country the user claims to be in.
type CountryEvidence struct {
	CountryCode string `json:"countryCode"`
}

func (*CountryEvidence) ClaimType() domain.ClaimType { return domain.ClaimCountry }
func (e *CountryEvidence) Scrub()                    { e.CountryCode = "" }
func (*CountryEvidence) isEvidence()                 {}

// EmailEvidence is a raw .eml message. It is turned into DKIMEvidence before
// it reaches the engine.
type EmailEvidence struct {
	Raw []byte
}

func (*EmailEvidence) ClaimType() domain.ClaimType { return domain.ClaimEmailDomain }
func (*EmailEvidence) isEvidence()                 {}

func (e *EmailEvidence) Scrub() {
	clear(e.Raw)
	e.Raw = nil
}

// DKIMEvidence is the parsed form of EmailEvidence.
type DKIMEvidence struct {
	Triple *dkim.EvidenceTriple
}

func (*DKIMEvidence) ClaimType() domain.ClaimType { return domain.ClaimEmailDomain }
func (e *DKIMEvidence) Scrub()                    { e.Triple.Scrub() }
func (*DKIMEvidence) isEvidence()                 {}

// AgeEvidence proves the user is at least MinimumAge years old on the day of
// generation.
type AgeEvidence struct {
	BirthDate  time.Time `json:"birthDate"`
	MinimumAge int       `json:"minimumAge"`
}

func (*AgeEvidence) ClaimType() domain.ClaimType { return domain.ClaimAge }
func (e *AgeEvidence) Scrub()                    { *e = AgeEvidence{} }
func (*AgeEvidence) isEvidence()                 {}

// MaxEvidenceBytes bounds a submitted evidence body, raw email included.
const MaxEvidenceBytes = 1 << 20

// EvidenceRequest is the wire form of evidence submitted by the interactive
// surface. Only the fields for the target claim type are read.
type EvidenceRequest struct {
	CountryCode string `json:"countryCode,omitempty"`
	Email       string `json:"email,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
	MinimumAge  int    `json:"minimumAge,omitempty"`
}

// ToEvidence converts the request for claim and clears the copied fields.
func (r *EvidenceRequest) ToEvidence(claim domain.ClaimType) (Evidence, error) {
	defer func() { *r = EvidenceRequest{} }()
	switch claim {
	case domain.ClaimCountry:
		return &CountryEvidence{CountryCode: r.CountryCode}, nil
	case domain.ClaimEmailDomain:
		if r.Email == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "email is required")
		}
		return &EmailEvidence{Raw: []byte(r.Email)}, nil
	case domain.ClaimAge:
		birth, err := time.Parse(time.DateOnly, r.BirthDate)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "birthDate must be YYYY-MM-DD")
		}
		return &AgeEvidence{BirthDate: birth, MinimumAge: r.MinimumAge}, nil
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unsupported claim type")
	}
}
