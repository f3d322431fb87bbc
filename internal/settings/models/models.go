package models

import (
	"fmt"

	dErrors "zkvault/pkg/domain-errors"
)

const (
	DefaultExpiryDays = 30
	MinExpiryDays     = 1
	MaxExpiryDays     = 365
)

// Settings are the user preferences that shape broker decisions.
type Settings struct {
	AutoApprove bool `json:"autoApprove"`
	ExpiryDays  int  `json:"expiryDays"`
}

// Default returns the settings used before the user changes anything.
func Default() Settings {
	return Settings{AutoApprove: false, ExpiryDays: DefaultExpiryDays}
}

// Validate enforces the expiry bounds.
func (s Settings) Validate() error {
	if s.ExpiryDays < MinExpiryDays || s.ExpiryDays > MaxExpiryDays {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("expiryDays must be between %d and %d", MinExpiryDays, MaxExpiryDays))
	}
	return nil
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	AutoApprove *bool `json:"autoApprove,omitempty"`
	ExpiryDays  *int  `json:"expiryDays,omitempty"`
}

// Apply returns s with the patch applied.
func (p Patch) Apply(s Settings) Settings {
	if p.AutoApprove != nil {
		s.AutoApprove = *p.AutoApprove
	}
	if p.ExpiryDays != nil {
		s.ExpiryDays = *p.ExpiryDays
	}
	return s
}
