package audit

import "time"

// EventCategory classifies audit events so sinks can route them.
type EventCategory string

const (
	// CategoryCompliance covers consent changes and disclosures of user data.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers root secret lifecycle and integrity failures.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It never carries
// evidence or secret material.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    AuditEvent    `json:"action"`
	Origin    string        `json:"origin,omitempty"`
	ClaimType string        `json:"claimType,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

type AuditEvent string

const (
	// Disclosure events
	EventDisclosureDelivered AuditEvent = "disclosure_delivered"
	EventDisclosureDenied    AuditEvent = "disclosure_denied"

	// Permission events
	EventPermissionGranted AuditEvent = "permission_granted"
	EventPermissionRevoked AuditEvent = "permission_revoked"

	// Attestation events
	EventAttestationGenerated AuditEvent = "attestation_generated"
	EventAttestationDeleted   AuditEvent = "attestation_deleted"

	// Vault events
	EventSecretCreated     AuditEvent = "secret_created"
	EventSecretMigrated    AuditEvent = "secret_migrated"
	EventSecretRegenerated AuditEvent = "secret_regenerated"
	EventSecretImported    AuditEvent = "secret_imported"

	// Registration events
	EventRegistrationCompleted AuditEvent = "registration_completed"
	EventRegistrationFailed    AuditEvent = "registration_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDisclosureDelivered: CategoryCompliance,
	EventDisclosureDenied:    CategoryCompliance,
	EventPermissionGranted:   CategoryCompliance,
	EventPermissionRevoked:   CategoryCompliance,

	EventSecretCreated:     CategorySecurity,
	EventSecretMigrated:    CategorySecurity,
	EventSecretRegenerated: CategorySecurity,
	EventSecretImported:    CategorySecurity,

	EventAttestationGenerated:  CategoryOperations,
	EventAttestationDeleted:    CategoryOperations,
	EventRegistrationCompleted: CategoryOperations,
	EventRegistrationFailed:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
