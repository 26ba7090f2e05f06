package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("err = %v, want *DomainError with code %s", err, code)
	}
	if domainErr.Code != code {
		t.Fatalf("error code = %s, want %s", domainErr.Code, code)
	}
}

func openTicket(id, categoryID int64, priority domain.TicketPriority) *domain.Ticket {
	return &domain.Ticket{
		ID:          id,
		Title:       "Impresora no funciona",
		Description: "La impresora de recepcion no imprime",
		CategoryID:  categoryID,
		AreaID:      1,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		RequesterID: 1,
		Active:      true,
	}
}

func newAssignmentService(tickets *fakeTicketRepo, technicians *fakeTechnicianRepo, assignments *fakeAssignmentRepo) *AssignmentService {
	return NewAssignmentService(AssignmentDependencies{
		TicketRepo:     tickets,
		TechnicianRepo: technicians,
		AssignmentRepo: assignments,
		Matcher:        NewMatcherService(technicians),
	})
}

func TestAssignTechnicianPicksTopCandidate(t *testing.T) {
	tickets := newFakeTicketRepo().add(openTicket(1, 42, domain.TicketPriorityHigh))
	technicians := &fakeTechnicianRepo{technicians: []domain.Technician{
		eligibleTech(1, 5, 10),
		eligibleTech(2, 5, 10, 42),
	}}
	assignments := &fakeAssignmentRepo{}
	svc := newAssignmentService(tickets, technicians, assignments)

	techID, err := svc.AssignTechnician(context.Background(), 1)
	if err != nil {
		t.Fatalf("AssignTechnician: %v", err)
	}
	if techID == nil || *techID != 2 {
		t.Fatalf("assigned %v, want specialist technician 2", techID)
	}
	if tickets.assignedTech[1] != 2 {
		t.Fatalf("ticket row not updated with technician 2")
	}
	if tickets.tickets[1].AssignedAt == nil {
		t.Fatalf("assignment timestamp not stored on the ticket row")
	}
	if len(technicians.increments) != 1 || technicians.increments[0] != 2 {
		t.Fatalf("load increments = %v, want [2]", technicians.increments)
	}
	if len(assignments.created) != 1 || assignments.created[0].Kind != domain.AssignmentKindAuto {
		t.Fatalf("assignment records = %+v, want one AUTO record", assignments.created)
	}
}

func TestAssignTechnicianNoEligibleReturnsNil(t *testing.T) {
	tickets := newFakeTicketRepo().add(openTicket(1, 42, domain.TicketPriorityLow))
	svc := newAssignmentService(tickets, &fakeTechnicianRepo{}, &fakeAssignmentRepo{})

	techID, err := svc.AssignTechnician(context.Background(), 1)
	if err != nil {
		t.Fatalf("AssignTechnician: %v", err)
	}
	if techID != nil {
		t.Fatalf("assigned %v, want nil when nobody is eligible", *techID)
	}
}

func TestAssignTechnicianUnknownTicket(t *testing.T) {
	svc := newAssignmentService(newFakeTicketRepo(), &fakeTechnicianRepo{}, &fakeAssignmentRepo{})

	_, err := svc.AssignTechnician(context.Background(), 999)
	assertErrorCode(t, err, "NOT_FOUND")
}

func TestAssignTechnicianRejectsTerminalTicket(t *testing.T) {
	closed := openTicket(1, 42, domain.TicketPriorityHigh)
	closed.Status = domain.TicketStatusClosed
	tickets := newFakeTicketRepo().add(closed)
	svc := newAssignmentService(tickets, &fakeTechnicianRepo{technicians: []domain.Technician{eligibleTech(1, 0, 10)}}, &fakeAssignmentRepo{})

	_, err := svc.AssignTechnician(context.Background(), 1)
	assertErrorCode(t, err, "CONFLICT")
}

func TestAssignTechnicianSurfacesPartialWrite(t *testing.T) {
	tickets := newFakeTicketRepo().add(openTicket(1, 42, domain.TicketPriorityHigh))
	tickets.assignErr = errBoom
	technicians := &fakeTechnicianRepo{technicians: []domain.Technician{eligibleTech(1, 0, 10)}}
	svc := newAssignmentService(tickets, technicians, &fakeAssignmentRepo{})

	if _, err := svc.AssignTechnician(context.Background(), 1); err == nil {
		t.Fatalf("ticket update failure was swallowed")
	}
	// the load increment already happened; the error must not hide that
	if len(technicians.increments) != 1 {
		t.Fatalf("increments = %v, want the reservation recorded", technicians.increments)
	}
}

func TestReassignTicketSwapsLoad(t *testing.T) {
	tickets := newFakeTicketRepo().add(openTicket(1, 42, domain.TicketPriorityHigh))
	technicians := &fakeTechnicianRepo{technicians: []domain.Technician{
		eligibleTech(1, 1, 10),
		eligibleTech(2, 0, 10),
	}}
	assignments := &fakeAssignmentRepo{}
	assignments.created = append(assignments.created, domain.Assignment{
		ID: 1, TicketID: 1, TechnicianID: 1, Kind: domain.AssignmentKindAuto, Active: true,
	})
	svc := newAssignmentService(tickets, technicians, assignments)

	if err := svc.ReassignTicket(context.Background(), 1, 2, "wrong specialty"); err != nil {
		t.Fatalf("ReassignTicket: %v", err)
	}
	if tickets.assignedTech[1] != 2 {
		t.Fatalf("ticket row not moved to technician 2")
	}
	if len(technicians.increments) != 1 || technicians.increments[0] != 2 {
		t.Fatalf("increments = %v, want [2]", technicians.increments)
	}
	if len(technicians.decrements) != 1 || technicians.decrements[0] != 1 {
		t.Fatalf("decrements = %v, want [1]", technicians.decrements)
	}

	prior := assignments.created[0]
	if prior.Active {
		t.Fatalf("prior assignment still active")
	}
	latest := assignments.created[len(assignments.created)-1]
	if latest.Kind != domain.AssignmentKindReassignment || latest.Reason != "wrong specialty" {
		t.Fatalf("new record = %+v, want REASSIGNMENT with reason", latest)
	}
}

func TestReassignTicketRequiresReason(t *testing.T) {
	svc := newAssignmentService(newFakeTicketRepo(), &fakeTechnicianRepo{}, &fakeAssignmentRepo{})

	err := svc.ReassignTicket(context.Background(), 1, 2, "  ")
	assertErrorCode(t, err, "VALIDATION_FAILED")
}

func TestReassignTicketTargetAtCapacity(t *testing.T) {
	tickets := newFakeTicketRepo().add(openTicket(1, 42, domain.TicketPriorityHigh))
	technicians := &fakeTechnicianRepo{technicians: []domain.Technician{eligibleTech(2, 10, 10)}}
	svc := newAssignmentService(tickets, technicians, &fakeAssignmentRepo{})

	err := svc.ReassignTicket(context.Background(), 1, 2, "escalation")
	assertErrorCode(t, err, "CONFLICT")
}
