package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

func TestEstimateResolutionDefaultsOnEmptyHistory(t *testing.T) {
	svc := NewEstimateService(&fakeTicketRepo{}, nil, 0, nil)

	cases := map[domain.TicketPriority]float64{
		domain.TicketPriorityCritical: 240,
		domain.TicketPriorityHigh:     480,
		domain.TicketPriorityMedium:   1440,
		domain.TicketPriorityLow:      2880,
	}
	for priority, want := range cases {
		got, err := svc.EstimateResolutionTime(context.Background(), 1, priority)
		if err != nil {
			t.Fatalf("EstimateResolutionTime(%s): %v", priority, err)
		}
		if got != want {
			t.Fatalf("EstimateResolutionTime(%s) = %v, want %v", priority, got, want)
		}
	}
}

func TestEstimateResolutionUsesHistoricalMean(t *testing.T) {
	repo := &fakeTicketRepo{resolutionSample: []float64{30, 60, 90}}
	svc := NewEstimateService(repo, nil, 0, nil)

	got, err := svc.EstimateResolutionTime(context.Background(), 1, domain.TicketPriorityHigh)
	if err != nil {
		t.Fatalf("EstimateResolutionTime: %v", err)
	}
	if got != 60 {
		t.Fatalf("EstimateResolutionTime = %v, want 60", got)
	}
}

func TestEstimateResolutionRejectsUnknownPriority(t *testing.T) {
	svc := NewEstimateService(&fakeTicketRepo{}, nil, 0, nil)

	if _, err := svc.EstimateResolutionTime(context.Background(), 1, domain.TicketPriority("SOMEDAY")); err == nil {
		t.Fatalf("unknown priority accepted")
	}
}

func TestEstimateResponseDefaultsOnEmptyHistory(t *testing.T) {
	svc := NewEstimateService(&fakeTicketRepo{}, nil, 0, nil)

	got, err := svc.EstimateResponseTime(context.Background(), 1)
	if err != nil {
		t.Fatalf("EstimateResponseTime: %v", err)
	}
	if got != 60 {
		t.Fatalf("EstimateResponseTime = %v, want 60", got)
	}
}

func TestEstimateResponseUsesHistoricalMean(t *testing.T) {
	repo := &fakeTicketRepo{responseSample: []float64{10, 20}}
	svc := NewEstimateService(repo, nil, 0, nil)

	got, err := svc.EstimateResponseTime(context.Background(), 1)
	if err != nil {
		t.Fatalf("EstimateResponseTime: %v", err)
	}
	if got != 15 {
		t.Fatalf("EstimateResponseTime = %v, want 15", got)
	}
}

func TestTimeStatisticsFromSample(t *testing.T) {
	repo := &fakeTicketRepo{resolutionSample: []float64{10, 20, 30, 100}}
	svc := NewEstimateService(repo, nil, 0, nil)

	stats, err := svc.GetTimeStatistics(context.Background(), 1, domain.TicketPriorityMedium)
	if err != nil {
		t.Fatalf("GetTimeStatistics: %v", err)
	}
	if stats.SampleSize != 4 {
		t.Fatalf("SampleSize = %d, want 4", stats.SampleSize)
	}
	if stats.MinMinutes != 10 || stats.MaxMinutes != 100 {
		t.Fatalf("min/max = %v/%v, want 10/100", stats.MinMinutes, stats.MaxMinutes)
	}
	if stats.AvgMinutes != 40 {
		t.Fatalf("AvgMinutes = %v, want 40", stats.AvgMinutes)
	}
	// median sits at offset len/2 of the ordered sample
	if stats.MedianMinutes != 30 {
		t.Fatalf("MedianMinutes = %v, want 30", stats.MedianMinutes)
	}
}

func TestTimeStatisticsEmptySampleFallsBack(t *testing.T) {
	svc := NewEstimateService(&fakeTicketRepo{}, nil, 0, nil)

	stats, err := svc.GetTimeStatistics(context.Background(), 1, domain.TicketPriorityCritical)
	if err != nil {
		t.Fatalf("GetTimeStatistics: %v", err)
	}
	if stats.SampleSize != 0 {
		t.Fatalf("SampleSize = %d, want 0", stats.SampleSize)
	}
	for name, v := range map[string]float64{
		"min":    stats.MinMinutes,
		"avg":    stats.AvgMinutes,
		"max":    stats.MaxMinutes,
		"median": stats.MedianMinutes,
	} {
		if v != 240 {
			t.Fatalf("%s = %v, want the 240 minute critical default", name, v)
		}
	}
}
