package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// AlertRepository persists SLA alert records. The unique constraint on
// (ticket_id, kind) is what makes the monitor job idempotent.
type AlertRepository interface {
	// CreateOnce inserts the record unless one already exists for the same
	// (ticket, kind). Returns true only when a new record was written.
	CreateOnce(ctx context.Context, ticketID int64, kind domain.AlertKind, at time.Time) (bool, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AlertRecord, error)
}

type alertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository instantiates the repository.
func NewAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &alertRepository{pool: pool}
}

func (r *alertRepository) CreateOnce(ctx context.Context, ticketID int64, kind domain.AlertKind, at time.Time) (bool, error) {
	const query = `
        INSERT INTO sla_alerts (ticket_id, kind, created_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id, kind) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, ticketID, kind, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *alertRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AlertRecord, error) {
	const query = `
        SELECT id, ticket_id, kind, created_at
        FROM sla_alerts WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AlertRecord
	for rows.Next() {
		var record domain.AlertRecord
		if err := rows.Scan(&record.ID, &record.TicketID, &record.Kind, &record.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
