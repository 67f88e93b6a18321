package repositories

import (
	"context"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// AuditWriter defines write operations for the audit log
type AuditWriter interface {
	// SaveAuditEvent persists one audit event.
	SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error
}

// AuditReader defines read operations for the audit log
type AuditReader interface {
	// ListAuditEventsByEntity retrieves events for one entity, newest first.
	ListAuditEventsByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditEvent, error)
}

// AuditRepositoryFacade combines all audit-related repository interfaces
type AuditRepositoryFacade interface {
	AuditReader
	AuditWriter
}
