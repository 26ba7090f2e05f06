package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// TechnicianRepository handles persistence for technicians and their
// workload counters.
type TechnicianRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Technician, error)
	ListEligible(ctx context.Context) ([]domain.Technician, error)
	IncrementLoad(ctx context.Context, id int64) (bool, error)
	DecrementLoad(ctx context.Context, id int64) error
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `id, name, email, area_id, is_technician, active_flag,
       available_flag, current_load, max_capacity, specialties, created_at, updated_at`

func (r *technicianRepository) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE id=$1`
	var tech domain.Technician
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&tech.ID, &tech.Name, &tech.Email, &tech.AreaID, &tech.IsTechnician,
		&tech.Active, &tech.Available, &tech.CurrentLoad, &tech.MaxCapacity,
		&tech.Specialties, &tech.CreatedAt, &tech.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tech, nil
}

// ListEligible returns technicians that can take new work: technician flag
// set, active, available and below capacity. Ordered by id for deterministic
// downstream tie-breaks.
func (r *technicianRepository) ListEligible(ctx context.Context) ([]domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians
              WHERE is_technician AND active_flag AND available_flag AND current_load < max_capacity
              ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var tech domain.Technician
		if err := rows.Scan(
			&tech.ID, &tech.Name, &tech.Email, &tech.AreaID, &tech.IsTechnician,
			&tech.Active, &tech.Available, &tech.CurrentLoad, &tech.MaxCapacity,
			&tech.Specialties, &tech.CreatedAt, &tech.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tech)
	}
	return result, rows.Err()
}

// IncrementLoad reserves one slot of capacity with a single conditional
// update. Returns false when the technician is already at capacity, so
// concurrent assignments can never overbook.
func (r *technicianRepository) IncrementLoad(ctx context.Context, id int64) (bool, error) {
	const query = `
        UPDATE technicians SET current_load = current_load + 1, updated_at = NOW()
        WHERE id=$1 AND current_load < max_capacity`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// DecrementLoad releases one slot, never going below zero.
func (r *technicianRepository) DecrementLoad(ctx context.Context, id int64) error {
	const query = `
        UPDATE technicians SET current_load = current_load - 1, updated_at = NOW()
        WHERE id=$1 AND current_load > 0`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
