package domain

import "github.com/paasforest/immigrationai-sub000/platform/config"

// MatchWeights holds the scoring constants of the matcher. They are kept in
// one injectable structure so scoring can be tuned per environment and unit
// tested without any repository access.
type MatchWeights struct {
	// Base is the score every surviving candidate starts from.
	Base int
	// CorridorBonus is added once per non-empty corridor dimension,
	// rewarding corridor specificity over wildcard acceptance.
	CorridorBonus int
	// SuccessRateBonus is added when the specialization's success rate
	// meets SuccessRateThreshold.
	SuccessRateBonus int
	// SuccessRateThreshold is the minimum success rate for the bonus.
	SuccessRateThreshold int
	// LoadPenalty is subtracted per active assignment the provider holds.
	LoadPenalty int
	// IndependentBonus is added for non-organization-affiliated providers
	// as a tie-breaker.
	IndependentBonus int
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() MatchWeights {
	return MatchWeights{
		Base:                 100,
		CorridorBonus:        30,
		SuccessRateBonus:     20,
		SuccessRateThreshold: 80,
		LoadPenalty:          5,
		IndependentBonus:     15,
	}
}

// WeightsFromConfig builds MatchWeights from the routing configuration.
func WeightsFromConfig(cfg config.RoutingConfig) MatchWeights {
	return MatchWeights{
		Base:                 cfg.GetScoreBase(),
		CorridorBonus:        cfg.GetCorridorBonus(),
		SuccessRateBonus:     cfg.GetSuccessRateBonus(),
		SuccessRateThreshold: cfg.GetSuccessRateThreshold(),
		LoadPenalty:          cfg.GetLoadPenalty(),
		IndependentBonus:     cfg.GetIndependentBonus(),
	}
}

// Score computes the deterministic ranking score for a specialization
// carrying the given number of active assignments. Identical inputs always
// produce identical scores.
func (w MatchWeights) Score(spec Specialization, activeAssignments int) int {
	score := w.Base

	if len(spec.OriginCountries) > 0 {
		score += w.CorridorBonus
	}
	if len(spec.DestinationCountries) > 0 {
		score += w.CorridorBonus
	}
	if spec.SuccessRate != nil && *spec.SuccessRate >= w.SuccessRateThreshold {
		score += w.SuccessRateBonus
	}

	score -= w.LoadPenalty * activeAssignments

	if spec.Independent {
		score += w.IndependentBonus
	}

	return score
}
