package score

import (
	"math"

	"github.com/phagepick/decision-bundle/internal/feature"
)

// #region structural
// Structural maps a structural feature to [0,1]. The e-value term is linear in
// log-space between 1e-2 (0) and 1e-8 (1); the hit-count term saturates.
func Structural(ev feature.Evidence[feature.Structural]) float64 {
	s, ok := ev.Get()
	if !ok {
		return 0
	}
	best, ok := s.BestEvalue.Get()
	if !ok || math.IsNaN(best) {
		return 0
	}
	if best < EvalueFloor {
		best = EvalueFloor
	}
	eScore := Clamp01((-math.Log10(best) - EvalueLogLow) / EvalueLogSpan)

	var hScore float64
	if s.HitCount > 0 {
		hScore = 1 - math.Exp(-float64(s.HitCount)/HitSaturation)
	}
	return Clamp01(EvalueWeight*eScore + HitCountWeight*hScore)
}

// #endregion structural

// #region similarity
// Similarity clamps the raw similarity value to [0,1].
func Similarity(ev feature.Evidence[feature.Similarity]) float64 {
	s, ok := ev.Get()
	if !ok {
		return 0
	}
	v, ok := s.Value.Get()
	if !ok {
		return 0
	}
	return Clamp01(v)
}

// #endregion similarity

// #region safety
// SafetyPenalty sums the penalties of the flags carried by a safety feature.
func SafetyPenalty(ev feature.Evidence[feature.Safety]) float64 {
	s, ok := ev.Get()
	if !ok {
		return 0
	}
	var penalty float64
	if s.HasFlag(feature.FlagVFDBHit) {
		penalty += VFDBPenalty
	}
	if s.HasFlag(feature.FlagPossibleTemperate) {
		penalty += TemperatePenalty
	}
	return penalty
}

// #endregion safety

// #region combine
// Confidence combines the module scores. The safety penalty applies after
// weighting so flagged candidates still surface, only lower.
func Confidence(
	structural feature.Evidence[feature.Structural],
	similarity feature.Evidence[feature.Similarity],
	safety feature.Evidence[feature.Safety],
) float64 {
	return combine(Structural(structural), Similarity(similarity), SafetyPenalty(safety))
}

// Evaluate scores a full evidence set.
func Evaluate(set feature.Set) Breakdown {
	st := Structural(set.Structural)
	sim := Similarity(set.Similarity)
	pen := SafetyPenalty(set.Safety)
	return Breakdown{
		Structural: st,
		Similarity: sim,
		Penalty:    pen,
		Confidence: combine(st, sim, pen),
		Reason:     PrimaryReason(st, sim),
	}
}

func combine(structural, similarity, penalty float64) float64 {
	return Clamp01(StructuralWeight*structural + SimilarityWeight*similarity - penalty)
}

// #endregion combine

// #region explain
// PrimaryReason picks the evidence class that best explains the score.
func PrimaryReason(structScore, simScore float64) Reason {
	if structScore >= simScore && structScore > ReasonThreshold {
		return ReasonStructural
	}
	if simScore > ReasonThreshold {
		return ReasonSimilarity
	}
	return ReasonWeak
}

// NextAction returns the recommended follow-up. A VFDB hit outranks a
// lysogeny marker.
func NextAction(flags []string) string {
	var temperate bool
	for _, f := range flags {
		switch f {
		case feature.FlagVFDBHit:
			return ActionVFDBReview
		case feature.FlagPossibleTemperate:
			temperate = true
		}
	}
	if temperate {
		return ActionVerifyLifestyle
	}
	return ActionPlaqueAssay
}

// #endregion explain

// #region helpers
// Clamp01 bounds x to [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

// #endregion helpers
