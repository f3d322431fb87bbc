package dkim

import (
	"errors"
	"fmt"

	dErrors "zkvault/pkg/domain-errors"
)

// Kind names a parse failure. Values are stable and shown to the
// interactive surface.
type Kind string

const (
	KindNotAnEmail               Kind = "NotAnEmail"
	KindMissingDomain            Kind = "MissingDomain"
	KindMissingDkimSignature     Kind = "MissingDkimSignature"
	KindMalformedDkimSignature   Kind = "MalformedDkimSignature"
	KindUnsupportedDkimVersion   Kind = "UnsupportedDkimVersion"
	KindUnsupportedDkimAlgorithm Kind = "UnsupportedDkimAlgorithm"
)

var kindMessages = map[Kind]string{
	KindNotAnEmail:               "input does not look like an email",
	KindMissingDomain:            "no usable recipient or sender domain",
	KindMissingDkimSignature:     "email has no DKIM-Signature header",
	KindMalformedDkimSignature:   "DKIM-Signature is missing a required tag",
	KindUnsupportedDkimVersion:   "DKIM-Signature version must be 1",
	KindUnsupportedDkimAlgorithm: "DKIM-Signature algorithm must be rsa-sha256 or rsa-sha1",
}

// EvidenceError is the only error Parse returns. It never carries header or
// body content.
type EvidenceError struct {
	Kind Kind
}

func (e *EvidenceError) Error() string {
	return fmt.Sprintf("evidence [%s]: %s", e.Kind, kindMessages[e.Kind])
}

// Code maps every evidence failure to invalid input.
func (e *EvidenceError) Code() dErrors.Code {
	return dErrors.CodeInvalidInput
}

func newError(kind Kind) *EvidenceError {
	return &EvidenceError{Kind: kind}
}

// KindOf extracts the Kind from err, or "" when err is not an EvidenceError.
func KindOf(err error) Kind {
	var ee *EvidenceError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}
