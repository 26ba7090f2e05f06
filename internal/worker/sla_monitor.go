package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/events"
	"github.com/spec-kit/helpdesk-intel/internal/observability"
)

// SlaMonitorJobName identifies the job on the trigger surface.
const SlaMonitorJobName = "sla_monitor"

// TicketSource lists tickets still inside their lifecycle.
type TicketSource interface {
	ListActive(ctx context.Context) ([]domain.Ticket, error)
}

// AlertStore records SLA alerts at most once per (ticket, kind).
type AlertStore interface {
	CreateOnce(ctx context.Context, ticketID int64, kind domain.AlertKind, at time.Time) (bool, error)
}

// SlaMonitorJob scans active tickets for approaching or breached SLA
// deadlines. Per deadline kind a ticket moves ON_TIME -> NEAR_DUE ->
// BREACHED; each crossing emits exactly one alert, enforced by the unique
// (ticket, kind) record written before the notification goes out.
type SlaMonitorJob struct {
	tickets    TicketSource
	alerts     AlertStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewSlaMonitorJob creates the job.
func NewSlaMonitorJob(tickets TicketSource, alerts AlertStore, dispatcher events.Dispatcher, logger *zap.Logger) *SlaMonitorJob {
	return &SlaMonitorJob{
		tickets:    tickets,
		alerts:     alerts,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Name implements Job.
func (j *SlaMonitorJob) Name() string {
	return SlaMonitorJobName
}

// Run implements Job. Re-running against an unchanged ticket set inserts no
// new alert records.
func (j *SlaMonitorJob) Run(ctx context.Context) error {
	tickets, err := j.tickets.ListActive(ctx)
	if err != nil {
		return err
	}

	now := j.now()
	emitted := 0
	for i := range tickets {
		ticket := &tickets[i]

		if ticket.FirstResponseAt == nil {
			emitted += j.checkDeadline(ctx, ticket, ticket.ResponseDue, now,
				domain.AlertResponseNear, domain.AlertResponseBreached)
		}
		emitted += j.checkDeadline(ctx, ticket, ticket.ResolutionDue, now,
			domain.AlertResolutionNear, domain.AlertResolutionBreached)
	}

	j.logger.Info("sla scan complete",
		zap.Int("tickets", len(tickets)),
		zap.Int("alerts_emitted", emitted))
	return nil
}

// checkDeadline evaluates one deadline kind for one ticket and returns the
// number of alerts emitted (0 or 1).
func (j *SlaMonitorJob) checkDeadline(ctx context.Context, ticket *domain.Ticket, deadline, now time.Time, nearKind, breachKind domain.AlertKind) int {
	remaining := deadline.Sub(now)

	var kind domain.AlertKind
	switch {
	case remaining <= 0:
		kind = breachKind
	case remaining <= domain.AlertLeadWindow(ticket.Priority):
		kind = nearKind
	default:
		return 0
	}

	inserted, err := j.alerts.CreateOnce(ctx, ticket.ID, kind, now)
	if err != nil {
		j.logger.Error("alert record insert failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return 0
	}
	if !inserted {
		return 0
	}

	observability.RecordSLAAlert(string(kind))
	j.notify(ctx, ticket, kind, deadline, remaining)
	return 1
}

// notify publishes the alert event. The record is already written, so a
// failed notification is detectable and never rolls anything back.
func (j *SlaMonitorJob) notify(ctx context.Context, ticket *domain.Ticket, kind domain.AlertKind, deadline time.Time, remaining time.Duration) {
	if j.dispatcher == nil {
		return
	}
	err := j.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLAAlert,
		TicketID:  ticket.ID,
		Timestamp: j.now(),
		Payload: events.SLAAlertPayload{
			Kind:      kind,
			Priority:  ticket.Priority,
			Deadline:  deadline,
			Remaining: remaining,
		},
	})
	if err != nil {
		j.logger.Warn("sla alert notification failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
