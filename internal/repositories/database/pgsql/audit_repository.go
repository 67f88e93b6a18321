package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit log.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// SaveAuditEvent persists one audit event.
func (r *PgxAuditRepository) SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	query := `
		INSERT INTO audit_logs (event_id, entity_type, entity_id, action, detail, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		event.EventID,
		event.EntityType,
		event.EntityID,
		event.Action,
		event.Detail,
		event.ActorID,
		event.OccurredAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit event "+event.EventID, err)
	}
	return nil
}

// ListAuditEventsByEntity retrieves events for one entity, newest first.
func (r *PgxAuditRepository) ListAuditEventsByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditEvent, error) {
	query := `
		SELECT event_id, entity_type, entity_id, action, detail, actor_id, occurred_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, entityType, entityID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list audit events", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		err := rows.Scan(&e.EventID, &e.EntityType, &e.EntityID, &e.Action, &e.Detail, &e.ActorID, &e.OccurredAt)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit event row", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
