package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusWaiting    TicketStatus = "WAITING_USER"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// Terminal reports whether the status is a terminal success state.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "CRITICAL"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityLow      TicketPriority = "LOW"
)

// Valid reports whether the priority is one of the known levels.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityCritical, TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. assigned technician is set
// iff status is ASSIGNED or later; resolved_at is set iff status is terminal.
type Ticket struct {
	ID              int64
	Title           string
	Description     string
	CategoryID      int64
	AreaID          int64
	Priority        TicketPriority
	Status          TicketStatus
	RequesterID     int64
	TechnicianID    *int64
	AssignedAt      *time.Time
	CreatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	ResponseDue     time.Time
	ResolutionDue   time.Time
	Active          bool
}

// Text returns the ticket text used for similarity comparison.
func (t *Ticket) Text() string {
	if t.Description == "" {
		return t.Title
	}
	return t.Title + " " + t.Description
}
