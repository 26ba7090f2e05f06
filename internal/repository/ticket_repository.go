package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// SearchIndex is the coarse full-text search collaborator used by duplicate
// detection. Results are a relevance pre-filter, never ground truth.
type SearchIndex interface {
	FindCandidates(ctx context.Context, text string, limit int) ([]domain.TicketSearchHit, error)
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	SearchIndex
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Ticket, error)
	ListActive(ctx context.Context) ([]domain.Ticket, error)
	Assign(ctx context.Context, ticketID, technicianID int64, at time.Time) error
	ResolutionMinutes(ctx context.Context, categoryID int64, priority domain.TicketPriority, since time.Time) ([]float64, error)
	ResponseMinutes(ctx context.Context, categoryID int64, since time.Time) ([]float64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category_id, area_id, priority, status,
       requester_id, assigned_technician_id, assigned_at, created_at, first_response_at,
       resolved_at, closed_at, response_due, resolution_due, active_flag`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ANY($1) ORDER BY array_position($1, id)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
              WHERE active_flag AND status NOT IN ('RESOLVED','CLOSED','CANCELLED')
              ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// FindCandidates ranks active tickets against the query text with Postgres
// full-text search.
func (r *ticketRepository) FindCandidates(ctx context.Context, text string, limit int) ([]domain.TicketSearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + ticketColumns + `,
                     ts_rank(search_vector, websearch_to_tsquery('spanish', $1)) AS rank
              FROM tickets
              WHERE active_flag AND search_vector @@ websearch_to_tsquery('spanish', $1)
              ORDER BY rank DESC, id
              LIMIT $2`
	rows, err := r.pool.Query(ctx, query, text, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []domain.TicketSearchHit
	for rows.Next() {
		var ticket domain.Ticket
		var rank float64
		if err := rows.Scan(
			&ticket.ID, &ticket.Title, &ticket.Description, &ticket.CategoryID,
			&ticket.AreaID, &ticket.Priority, &ticket.Status, &ticket.RequesterID,
			&ticket.TechnicianID, &ticket.AssignedAt, &ticket.CreatedAt,
			&ticket.FirstResponseAt, &ticket.ResolvedAt, &ticket.ClosedAt,
			&ticket.ResponseDue, &ticket.ResolutionDue, &ticket.Active, &rank,
		); err != nil {
			return nil, err
		}
		hits = append(hits, domain.TicketSearchHit{Ticket: &ticket, Rank: rank})
	}
	return hits, rows.Err()
}

// Assign sets the assignment fields and moves the ticket to ASSIGNED.
func (r *ticketRepository) Assign(ctx context.Context, ticketID, technicianID int64, at time.Time) error {
	const query = `
        UPDATE tickets SET assigned_technician_id=$1, status=$2, assigned_at=$3
        WHERE id=$4 AND active_flag`
	cmd, err := r.pool.Exec(ctx, query, technicianID, domain.TicketStatusAssigned, at, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ResolutionMinutes(ctx context.Context, categoryID int64, priority domain.TicketPriority, since time.Time) ([]float64, error) {
	const query = `
        SELECT EXTRACT(EPOCH FROM resolved_at - created_at) / 60 AS minutes
        FROM tickets
        WHERE category_id=$1 AND priority=$2 AND resolved_at IS NOT NULL AND resolved_at >= $3
        ORDER BY minutes`
	return r.queryMinutes(ctx, query, categoryID, priority, since)
}

func (r *ticketRepository) ResponseMinutes(ctx context.Context, categoryID int64, since time.Time) ([]float64, error) {
	const query = `
        SELECT EXTRACT(EPOCH FROM first_response_at - created_at) / 60 AS minutes
        FROM tickets
        WHERE category_id=$1 AND first_response_at IS NOT NULL AND created_at >= $2
        ORDER BY minutes`
	return r.queryMinutes(ctx, query, categoryID, since)
}

func (r *ticketRepository) queryMinutes(ctx context.Context, query string, args ...any) ([]float64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var minutes []float64
	for rows.Next() {
		var m float64
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		minutes = append(minutes, m)
	}
	return minutes, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID, &ticket.Title, &ticket.Description, &ticket.CategoryID,
		&ticket.AreaID, &ticket.Priority, &ticket.Status, &ticket.RequesterID,
		&ticket.TechnicianID, &ticket.AssignedAt, &ticket.CreatedAt,
		&ticket.FirstResponseAt, &ticket.ResolvedAt, &ticket.ClosedAt,
		&ticket.ResponseDue, &ticket.ResolutionDue, &ticket.Active,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
