package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-intel/internal/domain"
)

func eligibleTech(id int64, load, capacity int, specialties ...int64) domain.Technician {
	return domain.Technician{
		ID:           id,
		Name:         "tech",
		IsTechnician: true,
		Active:       true,
		Available:    true,
		CurrentLoad:  load,
		MaxCapacity:  capacity,
		Specialties:  specialties,
	}
}

func TestSuggestTechnicianPrefersSpecialist(t *testing.T) {
	repo := &fakeTechnicianRepo{technicians: []domain.Technician{
		eligibleTech(1, 0, 10),
		eligibleTech(2, 5, 10, 42),
	}}
	svc := NewMatcherService(repo)

	candidate, err := svc.SuggestTechnician(context.Background(), 42, domain.TicketPriorityHigh)
	if err != nil {
		t.Fatalf("SuggestTechnician: %v", err)
	}
	// specialist: 10 + 5 headroom = 15; generalist: 0 + 10 headroom = 10
	if candidate == nil || candidate.Technician.ID != 2 {
		t.Fatalf("got %+v, want specialist technician 2", candidate)
	}
	if !candidate.Specialized {
		t.Fatalf("candidate not marked specialized")
	}
	if len(candidate.Reasons) == 0 {
		t.Fatalf("candidate has no reasons")
	}
}

func TestSuggestTechnicianNoneEligible(t *testing.T) {
	full := eligibleTech(1, 10, 10)
	inactive := eligibleTech(2, 0, 10)
	inactive.Active = false
	unavailable := eligibleTech(3, 0, 10)
	unavailable.Available = false
	notTech := eligibleTech(4, 0, 10)
	notTech.IsTechnician = false

	repo := &fakeTechnicianRepo{technicians: []domain.Technician{full, inactive, unavailable, notTech}}
	svc := NewMatcherService(repo)

	candidate, err := svc.SuggestTechnician(context.Background(), 1, domain.TicketPriorityMedium)
	if err != nil {
		t.Fatalf("SuggestTechnician: %v", err)
	}
	if candidate != nil {
		t.Fatalf("got %+v, want nil for no eligible technicians", candidate)
	}
}

func TestTopTechniciansNeverReturnsFullTechnician(t *testing.T) {
	repo := &fakeTechnicianRepo{technicians: []domain.Technician{
		eligibleTech(1, 10, 10),
		eligibleTech(2, 9, 10),
	}}
	svc := NewMatcherService(repo)

	candidates, err := svc.TopTechnicians(context.Background(), 1, domain.TicketPriorityLow, 10)
	if err != nil {
		t.Fatalf("TopTechnicians: %v", err)
	}
	for _, candidate := range candidates {
		if candidate.Technician.CurrentLoad >= candidate.Technician.MaxCapacity {
			t.Fatalf("technician %d at capacity was returned", candidate.Technician.ID)
		}
	}
	if len(candidates) != 1 || candidates[0].Technician.ID != 2 {
		t.Fatalf("got %+v, want only technician 2", candidates)
	}
}

func TestTopTechniciansCapacityBreaksEqualSpecialization(t *testing.T) {
	repo := &fakeTechnicianRepo{technicians: []domain.Technician{
		eligibleTech(1, 7, 10, 5),
		eligibleTech(2, 2, 10, 5),
	}}
	svc := NewMatcherService(repo)

	candidates, err := svc.TopTechnicians(context.Background(), 5, domain.TicketPriorityMedium, 2)
	if err != nil {
		t.Fatalf("TopTechnicians: %v", err)
	}
	if candidates[0].Technician.ID != 2 {
		t.Fatalf("freer technician should score higher, got %d first", candidates[0].Technician.ID)
	}
	if candidates[0].Score <= candidates[1].Score {
		t.Fatalf("scores %v and %v should differ in favor of the freer technician",
			candidates[0].Score, candidates[1].Score)
	}
}

func TestTopTechniciansDeterministicTieBreak(t *testing.T) {
	// same score, same load: lowest id wins
	repo := &fakeTechnicianRepo{technicians: []domain.Technician{
		eligibleTech(9, 3, 10),
		eligibleTech(4, 3, 10),
		eligibleTech(6, 3, 10),
	}}
	svc := NewMatcherService(repo)

	candidates, err := svc.TopTechnicians(context.Background(), 1, domain.TicketPriorityMedium, 3)
	if err != nil {
		t.Fatalf("TopTechnicians: %v", err)
	}
	got := []int64{candidates[0].Technician.ID, candidates[1].Technician.ID, candidates[2].Technician.ID}
	want := []int64{4, 6, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order = %v, want %v", got, want)
		}
	}
}

func TestTopTechniciansRejectsUnknownPriority(t *testing.T) {
	svc := NewMatcherService(&fakeTechnicianRepo{})

	if _, err := svc.TopTechnicians(context.Background(), 1, domain.TicketPriority("WHENEVER"), 3); err == nil {
		t.Fatalf("unknown priority accepted")
	}
}
