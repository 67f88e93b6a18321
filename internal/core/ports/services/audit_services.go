package services

import (
	"context"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// AuditRecorder accepts audit events for asynchronous persistence. Record
// never blocks the calling operation; events queued at Close time are
// flushed before shutdown completes.
type AuditRecorder interface {
	// Record enqueues one audit event.
	Record(ctx context.Context, event domain.AuditEvent)

	// Close drains the queue and stops the recorder.
	Close()
}

// AuditReaderSvc defines read operations for the audit log
type AuditReaderSvc interface {
	// ListAuditEventsByEntity retrieves events for one entity, newest first.
	ListAuditEventsByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditEvent, error)
}
