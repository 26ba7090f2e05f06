package events

import (
	"time"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDuplicateDetected EventType = "duplicate_detected"
	EventTicketAssigned    EventType = "ticket_assigned"
	EventTicketReassigned  EventType = "ticket_reassigned"
	EventSLAAlert          EventType = "sla_alert"
	EventMetricsAggregated EventType = "metrics_aggregated"
)

// Event represents a domain event emitted by services and jobs.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DuplicateDetectedPayload payload.
type DuplicateDetectedPayload struct {
	CandidateTicketID int64   `json:"candidate_ticket_id"`
	Similarity        float64 `json:"similarity"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID int64                 `json:"technician_id"`
	Kind         domain.AssignmentKind `json:"kind"`
	Score        float64               `json:"score"`
	Reasons      []string              `json:"reasons,omitempty"`
}

// TicketReassignedPayload payload.
type TicketReassignedPayload struct {
	PreviousTechnicianID *int64 `json:"previous_technician_id,omitempty"`
	TechnicianID         int64  `json:"technician_id"`
	Reason               string `json:"reason"`
}

// SLAAlertPayload payload.
type SLAAlertPayload struct {
	Kind      domain.AlertKind      `json:"kind"`
	Priority  domain.TicketPriority `json:"priority"`
	Deadline  time.Time             `json:"deadline"`
	Remaining time.Duration         `json:"remaining"`
}

// MetricsAggregatedPayload payload.
type MetricsAggregatedPayload struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Snapshots   int       `json:"snapshots"`
	Pruned      int64     `json:"pruned"`
}
