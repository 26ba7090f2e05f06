package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/events"
	"github.com/spec-kit/helpdesk-intel/internal/repository"
)

// MetricAggregatorJobName identifies the job on the trigger surface.
const MetricAggregatorJobName = "metric_aggregator"

// MetricAggregatorJob rolls up per-technician, per-area, per-category and
// global statistics for the previous day. Snapshots are upserted, so a rerun
// for the same period updates rows instead of duplicating them.
type MetricAggregatorJob struct {
	metrics    repository.MetricRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	retention  time.Duration
	now        func() time.Time
}

// NewMetricAggregatorJob creates the job.
func NewMetricAggregatorJob(metrics repository.MetricRepository, dispatcher events.Dispatcher, logger *zap.Logger, retention time.Duration) *MetricAggregatorJob {
	if retention <= 0 {
		retention = 365 * 24 * time.Hour
	}
	return &MetricAggregatorJob{
		metrics:    metrics,
		dispatcher: dispatcher,
		logger:     logger,
		retention:  retention,
		now:        time.Now,
	}
}

// Name implements Job.
func (j *MetricAggregatorJob) Name() string {
	return MetricAggregatorJobName
}

// Run implements Job.
func (j *MetricAggregatorJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	end := now.Truncate(24 * time.Hour)
	start := end.Add(-24 * time.Hour)

	upserted := 0
	for _, aggregate := range []func(context.Context, time.Time, time.Time) ([]domain.MetricSnapshot, error){
		j.metrics.AggregateTechnicians,
		j.metrics.AggregateAreas,
		j.metrics.AggregateCategories,
	} {
		snapshots, err := aggregate(ctx, start, end)
		if err != nil {
			return err
		}
		for i := range snapshots {
			if err := j.metrics.Upsert(ctx, &snapshots[i]); err != nil {
				return err
			}
			upserted++
		}
	}

	global, err := j.metrics.AggregateGlobal(ctx, start, end)
	if err != nil {
		return err
	}
	if err := j.metrics.Upsert(ctx, global); err != nil {
		return err
	}
	upserted++

	pruned, err := j.metrics.PruneOlderThan(ctx, now.Add(-j.retention))
	if err != nil {
		return err
	}

	j.logger.Info("metric aggregation complete",
		zap.Time("period_start", start),
		zap.Time("period_end", end),
		zap.Int("snapshots", upserted),
		zap.Int64("pruned", pruned))

	if j.dispatcher != nil {
		_ = j.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMetricsAggregated,
			Timestamp: j.now(),
			Payload: events.MetricsAggregatedPayload{
				PeriodStart: start,
				PeriodEnd:   end,
				Snapshots:   upserted,
				Pruned:      pruned,
			},
		})
	}
	return nil
}
