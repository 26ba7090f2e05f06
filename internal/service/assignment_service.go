package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/events"
	"github.com/spec-kit/helpdesk-intel/internal/observability"
	"github.com/spec-kit/helpdesk-intel/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// AssignmentService picks a technician for a ticket and persists the
// assignment, keeping workload counters in step.
type AssignmentService struct {
	tickets     repository.TicketRepository
	technicians repository.TechnicianRepository
	assignments repository.AssignmentRepository
	matcher     *MatcherService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	TechnicianRepo repository.TechnicianRepository
	AssignmentRepo repository.AssignmentRepository
	Matcher        *MatcherService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		technicians: deps.TechnicianRepo,
		assignments: deps.AssignmentRepo,
		matcher:     deps.Matcher,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// AssignTechnician selects the best technician for the ticket and persists
// the assignment. Returns nil without error when no technician is eligible;
// the ticket stays unassigned and the caller decides what to do.
func (s *AssignmentService) AssignTechnician(ctx context.Context, ticketID int64) (*int64, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status.Terminal() || ticket.Status == domain.TicketStatusCancelled {
		return nil, apperrors.NewConflict("ticket is not open for assignment", map[string]any{"status": ticket.Status})
	}

	candidates, err := s.matcher.TopTechnicians(ctx, ticket.CategoryID, ticket.Priority, 0)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		observability.RecordAssignment(observability.OutcomeNoEligible)
		return nil, nil
	}

	// Walk the ranked list; a candidate can fill up between scoring and the
	// conditional increment, in which case the next one is tried.
	for i := range candidates {
		candidate := candidates[i]
		techID := candidate.Technician.ID

		reserved, err := s.technicians.IncrementLoad(ctx, techID)
		if err != nil {
			observability.RecordAssignment(observability.OutcomeError)
			return nil, apperrors.MapError(err)
		}
		if !reserved {
			continue
		}

		if err := s.finishAssignment(ctx, ticket, techID, domain.AssignmentKindAuto, "", candidate.Score, candidate.Reasons); err != nil {
			observability.RecordAssignment(observability.OutcomeError)
			return nil, err
		}
		observability.RecordAssignment(observability.OutcomeSuccess)
		return &techID, nil
	}

	observability.RecordAssignment(observability.OutcomeNoEligible)
	return nil, nil
}

// ReassignTicket moves the ticket to another technician, deactivating the
// prior assignment record and rebalancing load counters. The reason is
// recorded on the new assignment.
func (s *AssignmentService) ReassignTicket(ctx context.Context, ticketID, technicianID int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.NewValidationError("reassignment reason is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}

	var previousTechID *int64
	if prior, err := s.assignments.GetActiveByTicket(ctx, ticketID); err == nil {
		previousTechID = &prior.TechnicianID
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	reserved, err := s.technicians.IncrementLoad(ctx, technicianID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !reserved {
		return apperrors.NewConflict("technician at capacity", map[string]any{"technician_id": technicianID})
	}

	if err := s.assignments.DeactivateByTicket(ctx, ticketID); err != nil {
		s.logInconsistency("deactivate prior assignment failed after load increment", ticketID, technicianID, err)
		return apperrors.MapError(err)
	}
	if previousTechID != nil {
		if err := s.technicians.DecrementLoad(ctx, *previousTechID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logInconsistency("prior technician load decrement failed", ticketID, *previousTechID, err)
		}
	}

	if err := s.finishAssignment(ctx, ticket, technicianID, domain.AssignmentKindReassignment, reason, 0, nil); err != nil {
		return err
	}

	s.publish(ctx, events.EventTicketReassigned, ticketID, events.TicketReassignedPayload{
		PreviousTechnicianID: previousTechID,
		TechnicianID:         technicianID,
		Reason:               reason,
	})
	return nil
}

// finishAssignment performs the two writes that follow a successful load
// increment. A failure here leaves the counters ahead of the ticket row;
// that inconsistency is logged for manual reconciliation, never swallowed.
func (s *AssignmentService) finishAssignment(ctx context.Context, ticket *domain.Ticket, technicianID int64, kind domain.AssignmentKind, reason string, score float64, reasons []string) error {
	at := s.now()
	if err := s.tickets.Assign(ctx, ticket.ID, technicianID, at); err != nil {
		s.logInconsistency("ticket update failed after load increment", ticket.ID, technicianID, err)
		return apperrors.MapError(err)
	}

	assignment := &domain.Assignment{
		TicketID:     ticket.ID,
		TechnicianID: technicianID,
		Kind:         kind,
		Reason:       reason,
		AssignedAt:   at,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		s.logInconsistency("assignment record insert failed after ticket update", ticket.ID, technicianID, err)
		return apperrors.MapError(err)
	}

	if kind == domain.AssignmentKindAuto {
		s.publish(ctx, events.EventTicketAssigned, ticket.ID, events.TicketAssignedPayload{
			TechnicianID: technicianID,
			Kind:         kind,
			Score:        score,
			Reasons:      reasons,
		})
	}
	return nil
}

func (s *AssignmentService) logInconsistency(msg string, ticketID, technicianID int64, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error("assignment inconsistency: "+msg,
		zap.Int64("ticket_id", ticketID),
		zap.Int64("technician_id", technicianID),
		zap.Error(err))
}

func (s *AssignmentService) publish(ctx context.Context, eventType events.EventType, ticketID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
