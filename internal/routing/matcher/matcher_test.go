package matcher

import (
	"testing"

	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"

	"github.com/google/uuid"
)

func testLead() domain.Lead {
	return domain.Lead{
		ID:                 uuid.New(),
		ServiceTypeID:      uuid.New(),
		OriginCountry:      "Nigeria",
		DestinationCountry: "Canada",
	}
}

func spec(providerID uuid.UUID, mutate func(*domain.Specialization)) SpecializationWithLoad {
	s := domain.Specialization{
		ProviderID:         providerID,
		MaxConcurrentLeads: 10,
		AcceptingLeads:     true,
	}
	if mutate != nil {
		mutate(&s)
	}
	return SpecializationWithLoad{Specialization: s}
}

func TestRankFiltersIneligible(t *testing.T) {
	lead := testLead()

	notAccepting := spec(uuid.New(), func(s *domain.Specialization) { s.AcceptingLeads = false })
	wrongCorridor := spec(uuid.New(), func(s *domain.Specialization) { s.OriginCountries = []string{"Ghana"} })
	atCapacity := spec(uuid.New(), func(s *domain.Specialization) { s.MaxConcurrentLeads = 2 })
	atCapacity.ActiveAssignments = 2
	eligible := spec(uuid.New(), nil)

	got := Rank([]SpecializationWithLoad{notAccepting, wrongCorridor, atCapacity, eligible}, lead, domain.DefaultWeights(), 5)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].ProviderID != eligible.ProviderID {
		t.Errorf("wrong candidate survived: %s", got[0].ProviderID)
	}
}

func TestRankOrdersByScore(t *testing.T) {
	lead := testLead()
	rate90 := 90

	// Corridor specialist with strong track record beats a busy wildcard.
	specialist := spec(uuid.New(), func(s *domain.Specialization) {
		s.OriginCountries = []string{"Nigeria"}
		s.DestinationCountries = []string{"Canada"}
		s.SuccessRate = &rate90
	})
	wildcard := spec(uuid.New(), nil)
	wildcard.ActiveAssignments = 4

	got := Rank([]SpecializationWithLoad{wildcard, specialist}, lead, domain.DefaultWeights(), 5)

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ProviderID != specialist.ProviderID {
		t.Errorf("specialist should rank first")
	}
	if got[0].Score != 180 {
		t.Errorf("specialist score = %d, want 180", got[0].Score)
	}
	if got[1].Score != 80 {
		t.Errorf("wildcard score = %d, want 80", got[1].Score)
	}
}

func TestRankBreaksTiesByProviderID(t *testing.T) {
	lead := testLead()

	a := spec(uuid.MustParse("00000000-0000-0000-0000-00000000000a"), nil)
	b := spec(uuid.MustParse("00000000-0000-0000-0000-00000000000b"), nil)

	got := Rank([]SpecializationWithLoad{b, a}, lead, domain.DefaultWeights(), 5)

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ProviderID != a.ProviderID {
		t.Errorf("tie should break by provider ID ascending")
	}
}

func TestRankCapsAtLimit(t *testing.T) {
	lead := testLead()

	specs := make([]SpecializationWithLoad, 8)
	for i := range specs {
		specs[i] = spec(uuid.New(), nil)
	}

	got := Rank(specs, lead, domain.DefaultWeights(), 5)

	if len(got) != 5 {
		t.Errorf("expected candidates capped at 5, got %d", len(got))
	}
}

func TestRankUnlimitedConcurrency(t *testing.T) {
	lead := testLead()

	// MaxConcurrentLeads of zero would mean unlimited; the capacity filter
	// only applies when a positive cap is set.
	unbounded := spec(uuid.New(), func(s *domain.Specialization) { s.MaxConcurrentLeads = 0 })
	unbounded.ActiveAssignments = 50

	got := Rank([]SpecializationWithLoad{unbounded}, lead, domain.DefaultWeights(), 5)

	if len(got) != 1 {
		t.Fatalf("unbounded provider should be eligible, got %d candidates", len(got))
	}
}

func TestRankEmptyPool(t *testing.T) {
	got := Rank(nil, testLead(), domain.DefaultWeights(), 5)
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
}
