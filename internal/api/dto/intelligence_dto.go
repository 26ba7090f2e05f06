package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

// DuplicateCheckRequest payload.
type DuplicateCheckRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold"`
}

// SimilarityMatch response entry.
type SimilarityMatch struct {
	TicketID    int64               `json:"ticket_id"`
	Title       string              `json:"title"`
	Status      domain.TicketStatus `json:"status"`
	Cosine      float64             `json:"cosine"`
	Jaccard     float64             `json:"jaccard"`
	Levenshtein float64             `json:"levenshtein"`
	Similarity  float64             `json:"similarity"`
	IsDuplicate bool                `json:"is_duplicate"`
}

// SimilarityMatchFrom maps a domain result.
func SimilarityMatchFrom(result *domain.SimilarityResult) SimilarityMatch {
	match := SimilarityMatch{
		Cosine:      result.Cosine,
		Jaccard:     result.Jaccard,
		Levenshtein: result.Levenshtein,
		Similarity:  result.Combined,
		IsDuplicate: result.IsDuplicate,
	}
	if result.Ticket != nil {
		match.TicketID = result.Ticket.ID
		match.Title = result.Ticket.Title
		match.Status = result.Ticket.Status
	}
	return match
}

// SimilarGroupsRequest payload.
type SimilarGroupsRequest struct {
	TicketIDs []int64 `json:"ticket_ids"`
	Threshold float64 `json:"threshold"`
}

// TicketGroupResponse is one similarity cluster.
type TicketGroupResponse struct {
	SeedID  int64   `json:"seed_id"`
	Members []int64 `json:"members"`
}

// TechnicianCandidateResponse is one scored technician.
type TechnicianCandidateResponse struct {
	TechnicianID int64    `json:"technician_id"`
	Name         string   `json:"name"`
	CurrentLoad  int      `json:"current_load"`
	MaxCapacity  int      `json:"max_capacity"`
	Specialized  bool     `json:"specialized"`
	Score        float64  `json:"score"`
	Reasons      []string `json:"reasons"`
}

// TechnicianCandidateFrom maps a domain candidate.
func TechnicianCandidateFrom(candidate *domain.TechnicianCandidate) TechnicianCandidateResponse {
	return TechnicianCandidateResponse{
		TechnicianID: candidate.Technician.ID,
		Name:         candidate.Technician.Name,
		CurrentLoad:  candidate.Technician.CurrentLoad,
		MaxCapacity:  candidate.Technician.MaxCapacity,
		Specialized:  candidate.Specialized,
		Score:        candidate.Score,
		Reasons:      candidate.Reasons,
	}
}

// EstimateResponse carries expected handling times.
type EstimateResponse struct {
	CategoryID              int64                 `json:"category_id"`
	Priority                domain.TicketPriority `json:"priority"`
	ResponseMinutes         float64               `json:"response_minutes"`
	ResolutionMinutes       float64               `json:"resolution_minutes"`
	SampleSize              int                   `json:"sample_size"`
	MinResolutionMinutes    float64               `json:"min_resolution_minutes"`
	MaxResolutionMinutes    float64               `json:"max_resolution_minutes"`
	MedianResolutionMinutes float64               `json:"median_resolution_minutes"`
	GeneratedAt             time.Time             `json:"generated_at"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	TechnicianID int64  `json:"technician_id"`
	Reason       string `json:"reason"`
}

// AssignmentResponse reports the outcome of an assignment attempt.
type AssignmentResponse struct {
	TicketID     int64  `json:"ticket_id"`
	TechnicianID *int64 `json:"technician_id"`
	Assigned     bool   `json:"assigned"`
}
