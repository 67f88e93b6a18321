package domain

import "time"

// AuditAction categorizes what happened to an audited record.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditPost   AuditAction = "POST"
	AuditVoid   AuditAction = "VOID"
)

// AuditEvent is an immutable record of a state change on a ledger object.
// Events are written asynchronously after the owning transaction commits; a
// lost event never blocks the business operation.
type AuditEvent struct {
	EventID    string      `json:"eventID"` // Primary Key (UUID)
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityID"`
	Action     AuditAction `json:"action"`
	Detail     string      `json:"detail"` // JSON snapshot or human-readable summary
	ActorID    string      `json:"actorID"`
	OccurredAt time.Time   `json:"occurredAt"`
}
