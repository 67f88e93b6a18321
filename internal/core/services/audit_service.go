package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
)

// asyncAuditRecorder persists audit events from a background worker so the
// business operation never waits on the audit write. Events are dropped with
// an error log when the queue is full; the audit trail is best-effort by
// design of the queue, while the ledger itself stays strictly consistent.
type asyncAuditRecorder struct {
	auditRepo portsrepo.AuditWriter
	logger    *slog.Logger
	queue     chan domain.AuditEvent
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAsyncAuditRecorder starts the background worker. bufferSize bounds the
// number of in-flight events.
func NewAsyncAuditRecorder(auditRepo portsrepo.AuditWriter, logger *slog.Logger, bufferSize int) portssvc.AuditRecorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &asyncAuditRecorder{
		auditRepo: auditRepo,
		logger:    logger,
		queue:     make(chan domain.AuditEvent, bufferSize),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

var _ portssvc.AuditRecorder = (*asyncAuditRecorder)(nil)

func (r *asyncAuditRecorder) run() {
	defer r.wg.Done()
	for event := range r.queue {
		// The request context is long gone by the time the worker runs;
		// each write gets its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.auditRepo.SaveAuditEvent(ctx, event); err != nil {
			r.logger.Error("Failed to persist audit event",
				slog.String("event_id", event.EventID),
				slog.String("entity_type", event.EntityType),
				slog.String("entity_id", event.EntityID),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Record enqueues one audit event without blocking the caller.
func (r *asyncAuditRecorder) Record(_ context.Context, event domain.AuditEvent) {
	select {
	case r.queue <- event:
	default:
		r.logger.Error("Audit queue full, dropping event",
			slog.String("event_id", event.EventID),
			slog.String("entity_type", event.EntityType),
			slog.String("entity_id", event.EntityID),
		)
	}
}

// Close drains the queue and stops the worker.
func (r *asyncAuditRecorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

// auditService provides read access to the audit log.
type auditService struct {
	auditRepo portsrepo.AuditReader
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditReader) portssvc.AuditReaderSvc {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditReaderSvc = (*auditService)(nil)

// ListAuditEventsByEntity retrieves events for one entity, newest first.
func (s *auditService) ListAuditEventsByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.auditRepo.ListAuditEventsByEntity(ctx, entityType, entityID, limit)
}
