package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// MetricRepository computes and persists per-period metric snapshots.
type MetricRepository interface {
	AggregateTechnicians(ctx context.Context, start, end time.Time) ([]domain.MetricSnapshot, error)
	AggregateAreas(ctx context.Context, start, end time.Time) ([]domain.MetricSnapshot, error)
	AggregateCategories(ctx context.Context, start, end time.Time) ([]domain.MetricSnapshot, error)
	AggregateGlobal(ctx context.Context, start, end time.Time) (*domain.MetricSnapshot, error)
	Upsert(ctx context.Context, snapshot *domain.MetricSnapshot) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type metricRepository struct {
	pool *pgxpool.Pool
}

// NewMetricRepository instantiates the repository.
func NewMetricRepository(pool *pgxpool.Pool) MetricRepository {
	return &metricRepository{pool: pool}
}

func (r *metricRepository) AggregateTechnicians(ctx context.Context, start, end time.Time) ([]domain.MetricSnapshot, error) {
	return r.aggregate(ctx, domain.MetricSubjectTechnician, "t.assigned_technician_id", start, end)
}

func (r *metricRepository) AggregateAreas(ctx context.Context, start, end time.Time) ([]domain.MetricSnapshot, error) {
	return r.aggregate(ctx, domain.MetricSubjectArea, "t.area_id", start, end)
}

func (r *metricRepository) AggregateCategories(ctx context.Context, start, end time.Time) ([]domain.MetricSnapshot, error) {
	return r.aggregate(ctx, domain.MetricSubjectCategory, "t.category_id", start, end)
}

func (r *metricRepository) AggregateGlobal(ctx context.Context, start, end time.Time) (*domain.MetricSnapshot, error) {
	snapshots, err := r.aggregate(ctx, domain.MetricSubjectGlobal, "", start, end)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return &domain.MetricSnapshot{
			SubjectType: domain.MetricSubjectGlobal,
			PeriodStart: start,
			PeriodEnd:   end,
		}, nil
	}
	return &snapshots[0], nil
}

// aggregate rolls up ticket activity inside [start, end) grouped by the given
// column, or globally when groupCol is empty. Subjects without any activity
// in the period are dropped.
func (r *metricRepository) aggregate(ctx context.Context, subject domain.MetricSubject, groupCol string, start, end time.Time) ([]domain.MetricSnapshot, error) {
	subjectExpr := "0"
	groupClause := ""
	whereClause := ""
	if groupCol != "" {
		subjectExpr = groupCol
		groupClause = "GROUP BY " + groupCol
		whereClause = "WHERE " + groupCol + " IS NOT NULL"
	}

	query := fmt.Sprintf(`
        SELECT %s AS subject_id,
               COUNT(*) FILTER (WHERE t.created_at >= $1 AND t.created_at < $2) AS tickets_created,
               COUNT(*) FILTER (WHERE t.resolved_at >= $1 AND t.resolved_at < $2) AS tickets_resolved,
               COUNT(*) FILTER (WHERE t.closed_at >= $1 AND t.closed_at < $2) AS tickets_closed,
               COALESCE(SUM(b.breaches), 0) AS sla_breaches,
               COALESCE(AVG(EXTRACT(EPOCH FROM t.first_response_at - t.created_at) / 60)
                   FILTER (WHERE t.first_response_at >= $1 AND t.first_response_at < $2), 0) AS avg_response_minutes,
               COALESCE(AVG(EXTRACT(EPOCH FROM t.resolved_at - t.created_at) / 60)
                   FILTER (WHERE t.resolved_at >= $1 AND t.resolved_at < $2), 0) AS avg_resolution_minutes
        FROM tickets t
        LEFT JOIN (
            SELECT ticket_id, COUNT(*) AS breaches
            FROM sla_alerts
            WHERE kind IN ('response_breached','resolution_breached')
              AND created_at >= $1 AND created_at < $2
            GROUP BY ticket_id
        ) b ON b.ticket_id = t.id
        %s
        %s
        HAVING COUNT(*) FILTER (WHERE (t.created_at >= $1 AND t.created_at < $2)
                                   OR (t.resolved_at >= $1 AND t.resolved_at < $2)
                                   OR (t.closed_at >= $1 AND t.closed_at < $2)) > 0
            OR COALESCE(SUM(b.breaches), 0) > 0`,
		subjectExpr, whereClause, groupClause)

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MetricSnapshot
	for rows.Next() {
		snapshot := domain.MetricSnapshot{
			SubjectType: subject,
			PeriodStart: start,
			PeriodEnd:   end,
		}
		if err := rows.Scan(
			&snapshot.SubjectID,
			&snapshot.TicketsCreated,
			&snapshot.TicketsResolved,
			&snapshot.TicketsClosed,
			&snapshot.SLABreaches,
			&snapshot.AvgResponseMinutes,
			&snapshot.AvgResolutionMinutes,
		); err != nil {
			return nil, err
		}
		result = append(result, snapshot)
	}
	return result, rows.Err()
}

// Upsert inserts the snapshot or updates the existing row for the same
// subject and period.
func (r *metricRepository) Upsert(ctx context.Context, snapshot *domain.MetricSnapshot) error {
	const query = `
        INSERT INTO metric_snapshots
            (subject_type, subject_id, period_start, period_end,
             tickets_created, tickets_resolved, tickets_closed, sla_breaches,
             avg_response_minutes, avg_resolution_minutes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (subject_type, subject_id, period_start) DO UPDATE SET
            period_end = EXCLUDED.period_end,
            tickets_created = EXCLUDED.tickets_created,
            tickets_resolved = EXCLUDED.tickets_resolved,
            tickets_closed = EXCLUDED.tickets_closed,
            sla_breaches = EXCLUDED.sla_breaches,
            avg_response_minutes = EXCLUDED.avg_response_minutes,
            avg_resolution_minutes = EXCLUDED.avg_resolution_minutes,
            updated_at = NOW()
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		snapshot.SubjectType,
		snapshot.SubjectID,
		snapshot.PeriodStart,
		snapshot.PeriodEnd,
		snapshot.TicketsCreated,
		snapshot.TicketsResolved,
		snapshot.TicketsClosed,
		snapshot.SLABreaches,
		snapshot.AvgResponseMinutes,
		snapshot.AvgResolutionMinutes,
	).Scan(&snapshot.ID)
}

// PruneOlderThan deletes snapshots whose period started before cutoff.
func (r *metricRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM metric_snapshots WHERE period_start < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
