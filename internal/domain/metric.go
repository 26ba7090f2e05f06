package domain

import "time"

// MetricSubject enumerates what a snapshot aggregates over.
type MetricSubject string

const (
	MetricSubjectTechnician MetricSubject = "technician"
	MetricSubjectArea       MetricSubject = "area"
	MetricSubjectCategory   MetricSubject = "category"
	MetricSubjectGlobal     MetricSubject = "global"
)

// MetricSnapshot is a per-period rollup for one subject. Unique on
// (subject type, subject id, period start); re-aggregation updates in place.
type MetricSnapshot struct {
	ID                   int64
	SubjectType          MetricSubject
	SubjectID            int64
	PeriodStart          time.Time
	PeriodEnd            time.Time
	TicketsCreated       int
	TicketsResolved      int
	TicketsClosed        int
	SLABreaches          int
	AvgResponseMinutes   float64
	AvgResolutionMinutes float64
	UpdatedAt            time.Time
}
