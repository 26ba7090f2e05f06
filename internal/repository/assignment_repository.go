package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// AssignmentRepository persists ticket-to-technician assignment records.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Assignment, error)
	DeactivateByTicket(ctx context.Context, ticketID int64) error
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (ticket_id, technician_id, kind, reason, active_flag, assigned_at)
        VALUES ($1,$2,$3,$4,TRUE,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.TechnicianID,
		assignment.Kind,
		assignment.Reason,
		assignment.AssignedAt,
	).Scan(&assignment.ID)
}

func (r *assignmentRepository) GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Assignment, error) {
	const query = `
        SELECT id, ticket_id, technician_id, kind, reason, active_flag, assigned_at
        FROM assignments WHERE ticket_id=$1 AND active_flag
        ORDER BY assigned_at DESC LIMIT 1`
	var a domain.Assignment
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&a.ID, &a.TicketID, &a.TechnicianID, &a.Kind, &a.Reason, &a.Active, &a.AssignedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) DeactivateByTicket(ctx context.Context, ticketID int64) error {
	const query = `UPDATE assignments SET active_flag=FALSE WHERE ticket_id=$1 AND active_flag`
	_, err := r.pool.Exec(ctx, query, ticketID)
	return err
}
