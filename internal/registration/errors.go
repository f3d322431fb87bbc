package registration

import (
	"errors"
	"fmt"

	dErrors "zkvault/pkg/domain-errors"
)

type Kind string

const (
	KindInvalidBackendURL Kind = "InvalidBackendUrl"
	KindRejected          Kind = "Rejected"
	KindMalformedResponse Kind = "MalformedResponse"
	KindTransport         Kind = "Transport"
)

// RegistrationError is a fatal registration outcome. Cause never carries
// attestation or identity material.
type RegistrationError struct {
	Kind       Kind
	StatusCode int
	Cause      error
}

func (e *RegistrationError) Error() string {
	msg := "registration failed [" + string(e.Kind) + "]"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

func (e *RegistrationError) Code() dErrors.Code {
	if e.Kind == KindInvalidBackendURL {
		return dErrors.CodeValidation
	}
	return dErrors.CodeUnavailable
}

// KindOf extracts the Kind from err, or "" when err is not a RegistrationError.
func KindOf(err error) Kind {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
