package models

import (
	"time"

	"zkvault/pkg/domain"
)

// Grant records an explicit approval for one origin to receive one claim type.
// Absence of a Grant means not granted.
type Grant struct {
	Origin    domain.Origin    `json:"origin"`
	ClaimType domain.ClaimType `json:"claimType"`
	GrantedAt time.Time        `json:"grantedAt"`
}
