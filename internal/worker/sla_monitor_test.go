package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

type fakeTicketSource struct {
	tickets []domain.Ticket
}

func (f *fakeTicketSource) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	return f.tickets, nil
}

type alertKey struct {
	ticketID int64
	kind     domain.AlertKind
}

// fakeAlertStore mimics the unique (ticket, kind) constraint.
type fakeAlertStore struct {
	seen    map[alertKey]bool
	inserts int
	err     error
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{seen: make(map[alertKey]bool)}
}

func (f *fakeAlertStore) CreateOnce(ctx context.Context, ticketID int64, kind domain.AlertKind, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := alertKey{ticketID, kind}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.inserts++
	return true, nil
}

func slaTicket(id int64, priority domain.TicketPriority, createdAt time.Time) domain.Ticket {
	responseDue, resolutionDue := domain.ComputeDeadlines(priority, createdAt)
	return domain.Ticket{
		ID:            id,
		Priority:      priority,
		Status:        domain.TicketStatusOpen,
		CreatedAt:     createdAt,
		ResponseDue:   responseDue,
		ResolutionDue: resolutionDue,
		Active:        true,
	}
}

func newSLAJob(tickets []domain.Ticket, alerts *fakeAlertStore, now time.Time) *SlaMonitorJob {
	job := NewSlaMonitorJob(&fakeTicketSource{tickets: tickets}, alerts, nil, zap.NewNop())
	job.now = func() time.Time { return now }
	return job
}

func TestSlaMonitorBreachedDeadlines(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	// critical: response due 30m, resolution due 4h after creation; both long past
	ticket := slaTicket(1, domain.TicketPriorityCritical, now.Add(-8*time.Hour))
	alerts := newFakeAlertStore()
	job := newSLAJob([]domain.Ticket{ticket}, alerts, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if alerts.inserts != 2 {
		t.Fatalf("inserts = %d, want response and resolution breach records", alerts.inserts)
	}
	if !alerts.seen[alertKey{1, domain.AlertResponseBreached}] {
		t.Fatalf("response breach not recorded")
	}
	if !alerts.seen[alertKey{1, domain.AlertResolutionBreached}] {
		t.Fatalf("resolution breach not recorded")
	}
}

func TestSlaMonitorNearDueWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	// critical lead window is 5 minutes; response due in 3 minutes from now
	ticket := slaTicket(1, domain.TicketPriorityCritical, now.Add(3*time.Minute-30*time.Minute))
	alerts := newFakeAlertStore()
	job := newSLAJob([]domain.Ticket{ticket}, alerts, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !alerts.seen[alertKey{1, domain.AlertResponseNear}] {
		t.Fatalf("response near-due alert not recorded")
	}
	if alerts.seen[alertKey{1, domain.AlertResponseBreached}] {
		t.Fatalf("breach recorded before the deadline passed")
	}
	// resolution deadline (4h out) is far outside the 5 minute window
	if alerts.seen[alertKey{1, domain.AlertResolutionNear}] {
		t.Fatalf("resolution alert recorded too early")
	}
}

func TestSlaMonitorOutsideWindowEmitsNothing(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := slaTicket(1, domain.TicketPriorityLow, now)
	alerts := newFakeAlertStore()
	job := newSLAJob([]domain.Ticket{ticket}, alerts, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if alerts.inserts != 0 {
		t.Fatalf("inserts = %d, want none for a fresh ticket", alerts.inserts)
	}
}

func TestSlaMonitorSecondRunInsertsNothing(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		slaTicket(1, domain.TicketPriorityCritical, now.Add(-8*time.Hour)),
		slaTicket(2, domain.TicketPriorityHigh, now.Add(-48*time.Hour)),
	}
	alerts := newFakeAlertStore()
	job := newSLAJob(tickets, alerts, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := alerts.inserts

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if alerts.inserts != first {
		t.Fatalf("second run inserted %d new records, want 0", alerts.inserts-first)
	}
}

func TestSlaMonitorSkipsRespondedTickets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := slaTicket(1, domain.TicketPriorityCritical, now.Add(-time.Hour))
	responded := now.Add(-50 * time.Minute)
	ticket.FirstResponseAt = &responded
	alerts := newFakeAlertStore()
	job := newSLAJob([]domain.Ticket{ticket}, alerts, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if alerts.seen[alertKey{1, domain.AlertResponseBreached}] {
		t.Fatalf("response breach recorded despite first response")
	}
	// resolution window still applies regardless of first response
	if alerts.inserts != 0 {
		t.Fatalf("inserts = %d, want 0 inside the 4h resolution target", alerts.inserts)
	}
}
