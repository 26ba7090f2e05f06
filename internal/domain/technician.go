package domain

import "time"

// Technician models a support agent eligible for ticket assignment.
type Technician struct {
	ID           int64
	Name         string
	Email        string
	AreaID       *int64
	IsTechnician bool
	Active       bool
	Available    bool
	CurrentLoad  int
	MaxCapacity  int
	Specialties  []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Headroom returns the remaining assignment capacity.
func (t *Technician) Headroom() int {
	return t.MaxCapacity - t.CurrentLoad
}

// SpecializedIn reports whether the technician covers the category.
func (t *Technician) SpecializedIn(categoryID int64) bool {
	for _, id := range t.Specialties {
		if id == categoryID {
			return true
		}
	}
	return false
}

// TechnicianCandidate is an ephemeral scoring result for one technician,
// recomputed per request and never persisted.
type TechnicianCandidate struct {
	Technician  *Technician
	Score       float64
	Specialized bool
	Reasons     []string
}
