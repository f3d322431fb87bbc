package domain

import dErrors "zkvault/pkg/domain-errors"

// ClaimType identifies the category of an attestation.
// Invariant: the value must be one of the supported claim types.
//
// Usage: construct via ParseClaimType at trust boundaries; direct casting
// bypasses validation.
type ClaimType string

const (
	ClaimCountry     ClaimType = "country"
	ClaimEmailDomain ClaimType = "email_domain"
	ClaimAge         ClaimType = "age"
)

// ClaimTypes lists every supported claim type in display order.
var ClaimTypes = []ClaimType{ClaimCountry, ClaimEmailDomain, ClaimAge}

var validClaimTypes = map[ClaimType]bool{
	ClaimCountry:     true,
	ClaimEmailDomain: true,
	ClaimAge:         true,
}

// ParseClaimType constructs a ClaimType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseClaimType(s string) (ClaimType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "claim type cannot be empty")
	}
	c := ClaimType(s)
	if !validClaimTypes[c] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported claim type: "+s)
	}
	return c, nil
}

// IsValid reports whether c is a supported claim type.
func (c ClaimType) IsValid() bool {
	return validClaimTypes[c]
}

func (c ClaimType) String() string {
	return string(c)
}
