// Package matcher ranks eligible providers for a lead.
package matcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"

	"github.com/google/uuid"
)

// SpecializationWithLoad pairs a specialization with the owning provider's
// current number of active (pending or accepted) assignments.
type SpecializationWithLoad struct {
	domain.Specialization
	ActiveAssignments int
}

// Source supplies the specializations the matcher ranks. Implemented by the
// routing repository.
type Source interface {
	// ListEligibleSpecializations returns specializations for the service
	// type whose provider is active and whose accepting flag is set,
	// each with the provider's active assignment count.
	ListEligibleSpecializations(ctx context.Context, serviceTypeID uuid.UUID) ([]SpecializationWithLoad, error)
}

// Matcher produces the ranked candidate list for a lead.
type Matcher struct {
	source  Source
	weights domain.MatchWeights
	limit   int
}

// New creates a matcher with the given source, scoring weights, and
// candidate cap.
func New(source Source, weights domain.MatchWeights, limit int) *Matcher {
	if limit < 1 {
		limit = 5
	}
	return &Matcher{source: source, weights: weights, limit: limit}
}

// FindCandidates returns the eligible providers for the lead, best first,
// capped at the configured limit. Candidates must pass the corridor filter
// (empty corridor sets are wildcards) and have spare concurrent-lead
// capacity. Ties on score break by provider ID ascending so ranking is
// deterministic for identical inputs.
func (m *Matcher) FindCandidates(ctx context.Context, lead domain.Lead) ([]domain.Candidate, error) {
	specs, err := m.source.ListEligibleSpecializations(ctx, lead.ServiceTypeID)
	if err != nil {
		return nil, fmt.Errorf("list eligible specializations: %w", err)
	}

	candidates := Rank(specs, lead, m.weights, m.limit)
	return candidates, nil
}

// Rank applies the corridor and capacity filters, scores the survivors, and
// returns at most limit candidates ordered best first. It is a pure function
// over its inputs.
func Rank(specs []SpecializationWithLoad, lead domain.Lead, weights domain.MatchWeights, limit int) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(specs))

	for _, spec := range specs {
		if !spec.AcceptingLeads {
			continue
		}
		if !spec.MatchesCorridor(lead.OriginCountry, lead.DestinationCountry) {
			continue
		}
		if spec.MaxConcurrentLeads >= 1 && spec.ActiveAssignments >= spec.MaxConcurrentLeads {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Specialization:    spec.Specialization,
			ActiveAssignments: spec.ActiveAssignments,
			Score:             weights.Score(spec.Specialization, spec.ActiveAssignments),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ProviderID.String() < candidates[j].ProviderID.String()
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates
}
