package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/events"
	"github.com/spec-kit/helpdesk-intel/internal/observability"
	"github.com/spec-kit/helpdesk-intel/internal/repository"
	"github.com/spec-kit/helpdesk-intel/internal/similarity"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// DuplicateService detects duplicate and related tickets. The search index
// supplies coarse candidates; the scorer decides.
type DuplicateService struct {
	search     repository.SearchIndex
	tickets    repository.TicketRepository
	scorer     *similarity.Scorer
	dispatcher events.Dispatcher
	logger     *zap.Logger

	duplicateThreshold float64
	clusterThreshold   float64
	candidateLimit     int
}

// DuplicateDependencies bundles collaborators for the service.
type DuplicateDependencies struct {
	Search     repository.SearchIndex
	TicketRepo repository.TicketRepository
	Scorer     *similarity.Scorer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	DuplicateThreshold float64
	ClusterThreshold   float64
	CandidateLimit     int
}

// NewDuplicateService constructs the service, applying default thresholds
// for unset values.
func NewDuplicateService(deps DuplicateDependencies) *DuplicateService {
	if deps.DuplicateThreshold <= 0 {
		deps.DuplicateThreshold = 0.75
	}
	if deps.ClusterThreshold <= 0 {
		deps.ClusterThreshold = 0.70
	}
	if deps.CandidateLimit <= 0 {
		deps.CandidateLimit = 10
	}
	return &DuplicateService{
		search:             deps.Search,
		tickets:            deps.TicketRepo,
		scorer:             deps.Scorer,
		dispatcher:         deps.Dispatcher,
		logger:             deps.Logger,
		duplicateThreshold: deps.DuplicateThreshold,
		clusterThreshold:   deps.ClusterThreshold,
		candidateLimit:     deps.CandidateLimit,
	}
}

// DetectDuplicates scores coarse search candidates against the query text
// and returns them ranked by similarity. Ties keep the search collaborator's
// relevance order. A non-positive threshold falls back to the default.
func (s *DuplicateService) DetectDuplicates(ctx context.Context, title, description string, threshold float64) ([]domain.SimilarityResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if threshold <= 0 {
		threshold = s.duplicateThreshold
	}

	queryText := title + " " + description
	hits, err := s.search.FindCandidates(ctx, queryText, s.candidateLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	results := make([]domain.SimilarityResult, 0, len(hits))
	for _, hit := range hits {
		scores := s.scorer.Compare(queryText, hit.Ticket.Text())
		combined := round2(scores.Combined)
		results = append(results, domain.SimilarityResult{
			Ticket:      hit.Ticket,
			Cosine:      round2(scores.Cosine),
			Jaccard:     round2(scores.Jaccard),
			Levenshtein: round2(scores.Levenshtein),
			Combined:    combined,
			IsDuplicate: combined >= threshold,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Combined > results[j].Combined
	})
	return results, nil
}

// IsDuplicate reports only the top hit, and only when it clears the default
// duplicate threshold.
func (s *DuplicateService) IsDuplicate(ctx context.Context, title, description string) (*domain.SimilarityResult, error) {
	results, err := s.DetectDuplicates(ctx, title, description, s.duplicateThreshold)
	if err != nil {
		return nil, err
	}
	observability.RecordDuplicateCheck(len(results) > 0 && results[0].IsDuplicate)
	if len(results) == 0 || !results[0].IsDuplicate {
		return &domain.SimilarityResult{IsDuplicate: false}, nil
	}
	top := results[0]
	s.publishDuplicate(ctx, &top)
	return &top, nil
}

// GroupSimilarTickets clusters the given tickets greedily: tickets are
// visited in input order, each unprocessed ticket seeds a group and absorbs
// every later unprocessed ticket whose similarity with the seed meets the
// threshold. Grouping is seed-based, not transitive closure, so membership
// depends on input order.
func (s *DuplicateService) GroupSimilarTickets(ctx context.Context, ids []int64, threshold float64) ([]domain.TicketGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if threshold <= 0 {
		threshold = s.clusterThreshold
	}

	tickets, err := s.tickets.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[int64]*domain.Ticket, len(tickets))
	for i := range tickets {
		byID[tickets[i].ID] = &tickets[i]
	}

	processed := make(map[int64]bool, len(ids))
	var groups []domain.TicketGroup
	for _, seedID := range ids {
		seed, ok := byID[seedID]
		if !ok || processed[seedID] {
			continue
		}
		processed[seedID] = true
		group := domain.TicketGroup{SeedID: seedID, Members: []int64{seedID}}

		for _, otherID := range ids {
			other, ok := byID[otherID]
			if !ok || processed[otherID] {
				continue
			}
			if round2(s.scorer.Combined(seed.Text(), other.Text())) >= threshold {
				processed[otherID] = true
				group.Members = append(group.Members, otherID)
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *DuplicateService) publishDuplicate(ctx context.Context, result *domain.SimilarityResult) {
	if s.dispatcher == nil || result.Ticket == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventDuplicateDetected,
		TicketID:  result.Ticket.ID,
		Timestamp: time.Now(),
		Payload: events.DuplicateDetectedPayload{
			CandidateTicketID: result.Ticket.ID,
			Similarity:        result.Combined,
		},
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
