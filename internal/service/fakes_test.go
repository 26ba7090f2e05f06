package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// fakeTicketRepo implements repository.TicketRepository in memory.
type fakeTicketRepo struct {
	tickets          map[int64]*domain.Ticket
	hits             []domain.TicketSearchHit
	resolutionSample []float64
	responseSample   []float64

	assignErr     error
	assignedTech  map[int64]int64
	searchQueries []string
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:      make(map[int64]*domain.Ticket),
		assignedTech: make(map[int64]int64),
	}
}

func (f *fakeTicketRepo) add(t *domain.Ticket) *fakeTicketRepo {
	f.tickets[t.ID] = t
	return f
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

func (f *fakeTicketRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, id := range ids {
		if ticket, ok := f.tickets[id]; ok {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Active {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) FindCandidates(ctx context.Context, text string, limit int) ([]domain.TicketSearchHit, error) {
	f.searchQueries = append(f.searchQueries, text)
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeTicketRepo) Assign(ctx context.Context, ticketID, technicianID int64, at time.Time) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.TechnicianID = &technicianID
	ticket.Status = domain.TicketStatusAssigned
	ticket.AssignedAt = &at
	f.assignedTech[ticketID] = technicianID
	return nil
}

func (f *fakeTicketRepo) ResolutionMinutes(ctx context.Context, categoryID int64, priority domain.TicketPriority, since time.Time) ([]float64, error) {
	return f.resolutionSample, nil
}

func (f *fakeTicketRepo) ResponseMinutes(ctx context.Context, categoryID int64, since time.Time) ([]float64, error) {
	return f.responseSample, nil
}

// fakeTechnicianRepo implements repository.TechnicianRepository in memory.
type fakeTechnicianRepo struct {
	technicians []domain.Technician

	incrementErr error
	increments   []int64
	decrements   []int64
}

func (f *fakeTechnicianRepo) find(id int64) *domain.Technician {
	for i := range f.technicians {
		if f.technicians[i].ID == id {
			return &f.technicians[i]
		}
	}
	return nil
}

func (f *fakeTechnicianRepo) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	tech := f.find(id)
	if tech == nil {
		return nil, pgx.ErrNoRows
	}
	return tech, nil
}

func (f *fakeTechnicianRepo) ListEligible(ctx context.Context) ([]domain.Technician, error) {
	var result []domain.Technician
	for _, tech := range f.technicians {
		if tech.IsTechnician && tech.Active && tech.Available && tech.CurrentLoad < tech.MaxCapacity {
			result = append(result, tech)
		}
	}
	return result, nil
}

func (f *fakeTechnicianRepo) IncrementLoad(ctx context.Context, id int64) (bool, error) {
	if f.incrementErr != nil {
		return false, f.incrementErr
	}
	tech := f.find(id)
	if tech == nil || tech.CurrentLoad >= tech.MaxCapacity {
		return false, nil
	}
	tech.CurrentLoad++
	f.increments = append(f.increments, id)
	return true, nil
}

func (f *fakeTechnicianRepo) DecrementLoad(ctx context.Context, id int64) error {
	tech := f.find(id)
	if tech == nil || tech.CurrentLoad == 0 {
		return pgx.ErrNoRows
	}
	tech.CurrentLoad--
	f.decrements = append(f.decrements, id)
	return nil
}

// fakeAssignmentRepo implements repository.AssignmentRepository in memory.
type fakeAssignmentRepo struct {
	created   []domain.Assignment
	createErr error
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *domain.Assignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	assignment.ID = int64(len(f.created) + 1)
	assignment.Active = true
	f.created = append(f.created, *assignment)
	return nil
}

func (f *fakeAssignmentRepo) GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Assignment, error) {
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].TicketID == ticketID && f.created[i].Active {
			a := f.created[i]
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAssignmentRepo) DeactivateByTicket(ctx context.Context, ticketID int64) error {
	for i := range f.created {
		if f.created[i].TicketID == ticketID {
			f.created[i].Active = false
		}
	}
	return nil
}

var errBoom = errors.New("boom")
