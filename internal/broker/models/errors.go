package models

import (
	"errors"

	dErrors "zkvault/pkg/domain-errors"
)

// Reason names why a disclosure did not succeed.
type Reason string

const (
	ReasonProofNotFound    Reason = "ProofNotFound"
	ReasonPermissionDenied Reason = "PermissionDenied"
	ReasonUserCancelled    Reason = "UserCancelled"
	ReasonRequestNotFound  Reason = "RequestNotFound"
)

var reasonMessages = map[Reason]string{
	ReasonProofNotFound:    "no attestation could be produced",
	ReasonPermissionDenied: "the user denied the request",
	ReasonUserCancelled:    "the request was dismissed",
	ReasonRequestNotFound:  "unknown request id",
}

var reasonCodes = map[Reason]dErrors.Code{
	ReasonProofNotFound:    dErrors.CodeNotFound,
	ReasonPermissionDenied: dErrors.CodeForbidden,
	ReasonUserCancelled:    dErrors.CodeForbidden,
	ReasonRequestNotFound:  dErrors.CodeNotFound,
}

// DisclosureError is a named disclosure outcome, not a fault.
type DisclosureError struct {
	Reason Reason
}

func (e *DisclosureError) Error() string {
	return string(e.Reason) + ": " + reasonMessages[e.Reason]
}

// Message is the caller-facing description of the reason.
func (e *DisclosureError) Message() string {
	return reasonMessages[e.Reason]
}

func (e *DisclosureError) Code() dErrors.Code {
	if c, ok := reasonCodes[e.Reason]; ok {
		return c
	}
	return dErrors.CodeInternal
}

func NewDisclosureError(r Reason) *DisclosureError {
	return &DisclosureError{Reason: r}
}

// ReasonOf returns the reason carried by err, or "" when err is not a
// DisclosureError.
func ReasonOf(err error) Reason {
	var de *DisclosureError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
