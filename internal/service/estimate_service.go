package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// historyWindow is how far back resolved tickets feed the estimates.
const historyWindow = 90 * 24 * time.Hour

// defaultResponseMinutes applies when no historical rows match.
const defaultResponseMinutes = 60.0

// Static resolution defaults keyed by priority, in minutes.
var defaultResolutionMinutes = map[domain.TicketPriority]float64{
	domain.TicketPriorityCritical: 240,
	domain.TicketPriorityHigh:     480,
	domain.TicketPriorityMedium:   1440,
	domain.TicketPriorityLow:      2880,
}

// TimeStatistics summarizes the historical sample for one (category,
// priority) pair. Median is the value at offset floor(count/2) of the
// ordered sample, an approximation acceptable for dashboards.
type TimeStatistics struct {
	SampleSize    int     `json:"sample_size"`
	MinMinutes    float64 `json:"min_minutes"`
	AvgMinutes    float64 `json:"avg_minutes"`
	MaxMinutes    float64 `json:"max_minutes"`
	MedianMinutes float64 `json:"median_minutes"`
}

// EstimateService derives expected response and resolution times from the
// trailing 90-day history, falling back to static defaults on sparse data.
type EstimateService struct {
	tickets  repository.TicketRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewEstimateService creates the service. cache may be nil; statistics are
// then always computed from the database.
func NewEstimateService(tickets repository.TicketRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *EstimateService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &EstimateService{
		tickets:  tickets,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// EstimateResolutionTime returns the expected minutes to resolution for the
// (category, priority) pair.
func (s *EstimateService) EstimateResolutionTime(ctx context.Context, categoryID int64, priority domain.TicketPriority) (float64, error) {
	if !priority.Valid() {
		return 0, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	sample, err := s.tickets.ResolutionMinutes(ctx, categoryID, priority, s.now().Add(-historyWindow))
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if len(sample) == 0 {
		return defaultResolutionMinutes[priority], nil
	}
	return mean(sample), nil
}

// EstimateResponseTime returns the expected minutes to first response for
// the category.
func (s *EstimateService) EstimateResponseTime(ctx context.Context, categoryID int64) (float64, error) {
	sample, err := s.tickets.ResponseMinutes(ctx, categoryID, s.now().Add(-historyWindow))
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if len(sample) == 0 {
		return defaultResponseMinutes, nil
	}
	return mean(sample), nil
}

// GetTimeStatistics returns min/avg/max and the approximate median of the
// resolution sample. Results are cached briefly; cache errors degrade to a
// direct query.
func (s *EstimateService) GetTimeStatistics(ctx context.Context, categoryID int64, priority domain.TicketPriority) (*TimeStatistics, error) {
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	cacheKey := fmt.Sprintf("estimate:stats:%d:%s", categoryID, priority)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	sample, err := s.tickets.ResolutionMinutes(ctx, categoryID, priority, s.now().Add(-historyWindow))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &TimeStatistics{SampleSize: len(sample)}
	if len(sample) == 0 {
		fallback := defaultResolutionMinutes[priority]
		stats.MinMinutes, stats.AvgMinutes, stats.MaxMinutes, stats.MedianMinutes = fallback, fallback, fallback, fallback
	} else {
		// sample arrives ordered ascending from the repository
		stats.MinMinutes = sample[0]
		stats.MaxMinutes = sample[len(sample)-1]
		stats.AvgMinutes = mean(sample)
		stats.MedianMinutes = sample[len(sample)/2]
	}

	s.cacheSet(ctx, cacheKey, stats)
	return stats, nil
}

func (s *EstimateService) cacheGet(ctx context.Context, key string) *TimeStatistics {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && s.logger != nil {
			s.logger.Warn("estimate cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var stats TimeStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *EstimateService) cacheSet(ctx context.Context, key string, stats *TimeStatistics) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Warn("estimate cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func mean(sample []float64) float64 {
	var sum float64
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample))
}
