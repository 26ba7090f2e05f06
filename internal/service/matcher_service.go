package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// specializationBonus is added when the ticket category is in the
// technician's specialty set.
const specializationBonus = 10.0

// MatcherService ranks technicians for a (category, priority) pair by
// specialization and free capacity.
type MatcherService struct {
	technicians repository.TechnicianRepository
}

// NewMatcherService creates the service.
func NewMatcherService(technicians repository.TechnicianRepository) *MatcherService {
	return &MatcherService{technicians: technicians}
}

// SuggestTechnician returns the best candidate for the category, or nil when
// no technician is eligible. An empty result is not an error; the ticket
// simply stays unassigned.
func (s *MatcherService) SuggestTechnician(ctx context.Context, categoryID int64, priority domain.TicketPriority) (*domain.TechnicianCandidate, error) {
	candidates, err := s.TopTechnicians(ctx, categoryID, priority, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

// TopTechnicians scores every eligible technician and returns the best n,
// ordered by score descending. Ties prefer the lower current load, then the
// lowest technician id, so results are reproducible.
func (s *MatcherService) TopTechnicians(ctx context.Context, categoryID int64, priority domain.TicketPriority, n int) ([]domain.TechnicianCandidate, error) {
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	eligible, err := s.technicians.ListEligible(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	candidates := make([]domain.TechnicianCandidate, 0, len(eligible))
	for i := range eligible {
		tech := &eligible[i]
		candidates = append(candidates, scoreTechnician(tech, categoryID))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Technician.CurrentLoad != b.Technician.CurrentLoad {
			return a.Technician.CurrentLoad < b.Technician.CurrentLoad
		}
		return a.Technician.ID < b.Technician.ID
	})

	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// scoreTechnician computes the candidate score: a fixed specialization bonus
// plus a capacity bonus proportional to free headroom.
func scoreTechnician(tech *domain.Technician, categoryID int64) domain.TechnicianCandidate {
	candidate := domain.TechnicianCandidate{Technician: tech}

	if tech.SpecializedIn(categoryID) {
		candidate.Specialized = true
		candidate.Score += specializationBonus
		candidate.Reasons = append(candidate.Reasons, "specialized in ticket category")
	}

	headroom := tech.Headroom()
	candidate.Score += float64(headroom)
	candidate.Reasons = append(candidate.Reasons,
		fmt.Sprintf("%d of %d capacity free", headroom, tech.MaxCapacity))

	return candidate
}
