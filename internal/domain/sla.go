package domain

import "time"

// AlertKind enumerates SLA alert categories. Each (ticket, kind) pair is
// recorded at most once.
type AlertKind string

const (
	AlertResponseNear       AlertKind = "response_near"
	AlertResponseBreached   AlertKind = "response_breached"
	AlertResolutionNear     AlertKind = "resolution_near"
	AlertResolutionBreached AlertKind = "resolution_breached"
)

// AlertRecord marks that an SLA alert was emitted for a ticket.
type AlertRecord struct {
	ID        int64
	TicketID  int64
	Kind      AlertKind
	CreatedAt time.Time
}

// SLA targets per priority, fixed at ticket creation time.
var responseTargets = map[TicketPriority]time.Duration{
	TicketPriorityCritical: 30 * time.Minute,
	TicketPriorityHigh:     60 * time.Minute,
	TicketPriorityMedium:   4 * time.Hour,
	TicketPriorityLow:      8 * time.Hour,
}

var resolutionTargets = map[TicketPriority]time.Duration{
	TicketPriorityCritical: 4 * time.Hour,
	TicketPriorityHigh:     8 * time.Hour,
	TicketPriorityMedium:   24 * time.Hour,
	TicketPriorityLow:      48 * time.Hour,
}

// Lead windows before a deadline inside which a "near due" alert fires.
var alertLeadWindows = map[TicketPriority]time.Duration{
	TicketPriorityCritical: 5 * time.Minute,
	TicketPriorityHigh:     15 * time.Minute,
	TicketPriorityMedium:   60 * time.Minute,
	TicketPriorityLow:      120 * time.Minute,
}

// ResponseTarget returns the first-response SLA duration for a priority.
func ResponseTarget(p TicketPriority) time.Duration {
	if d, ok := responseTargets[p]; ok {
		return d
	}
	return responseTargets[TicketPriorityMedium]
}

// ResolutionTarget returns the resolution SLA duration for a priority.
func ResolutionTarget(p TicketPriority) time.Duration {
	if d, ok := resolutionTargets[p]; ok {
		return d
	}
	return resolutionTargets[TicketPriorityMedium]
}

// AlertLeadWindow returns how long before a deadline the near-due alert fires.
func AlertLeadWindow(p TicketPriority) time.Duration {
	if d, ok := alertLeadWindows[p]; ok {
		return d
	}
	return alertLeadWindows[TicketPriorityMedium]
}

// ComputeDeadlines derives both SLA deadlines from priority at creation time.
func ComputeDeadlines(p TicketPriority, createdAt time.Time) (responseDue, resolutionDue time.Time) {
	return createdAt.Add(ResponseTarget(p)), createdAt.Add(ResolutionTarget(p))
}
