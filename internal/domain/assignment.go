package domain

import "time"

// AssignmentKind distinguishes how an assignment came to be.
type AssignmentKind string

const (
	AssignmentKindAuto         AssignmentKind = "AUTO"
	AssignmentKindManual       AssignmentKind = "MANUAL"
	AssignmentKindReassignment AssignmentKind = "REASSIGNMENT"
)

// Assignment records the binding of a ticket to a technician. A ticket has
// at most one active assignment; reassignment deactivates the prior record.
type Assignment struct {
	ID           int64
	TicketID     int64
	TechnicianID int64
	Kind         AssignmentKind
	Reason       string
	Active       bool
	AssignedAt   time.Time
}
