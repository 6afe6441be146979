package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phagepick/decision-bundle/internal/feature"
)

func structural(evalue feature.Float, hits int) feature.Evidence[feature.Structural] {
	return feature.Present(feature.Structural{PhageID: "P1", HitCount: hits, BestEvalue: evalue})
}

func similarity(v feature.Float) feature.Evidence[feature.Similarity] {
	return feature.Present(feature.Similarity{PhageID: "P1", Value: v})
}

func safety(flags ...string) feature.Evidence[feature.Safety] {
	return feature.Present(feature.Safety{PhageID: "P1", Flags: flags})
}

func TestStructuralAbsentOrMissingEvalue(t *testing.T) {
	assert.Equal(t, 0.0, Structural(feature.Absent[feature.Structural]()))
	assert.Equal(t, 0.0, Structural(structural(feature.Null(), 5)))
	assert.Equal(t, 0.0, Structural(structural(feature.Num(math.NaN()), 5)))
}

func TestStructuralBounds(t *testing.T) {
	evalues := []float64{-1, 0, 1e-300, 1e-180, 1e-50, 1e-8, 1e-5, 1e-2, 0.5, 1, 10, math.Inf(1)}
	for _, e := range evalues {
		for _, hits := range []int{-2, 0, 1, 3, 50, 100000} {
			got := Structural(structural(feature.Num(e), hits))
			assert.GreaterOrEqual(t, got, 0.0, "e=%g hits=%d", e, hits)
			assert.LessOrEqual(t, got, 1.0, "e=%g hits=%d", e, hits)
		}
	}
}

func TestStructuralMonotoneInEvidence(t *testing.T) {
	strong := Structural(structural(feature.Num(1e-8), 3))
	weak := Structural(structural(feature.Num(1e-2), 0))
	assert.Greater(t, strong, weak)
	assert.Equal(t, 0.0, weak)
}

func TestStructuralFloorsTinyEvalues(t *testing.T) {
	assert.Equal(t,
		Structural(structural(feature.Num(1e-180), 0)),
		Structural(structural(feature.Num(0), 0)))
	assert.InDelta(t, EvalueWeight, Structural(structural(feature.Num(0), 0)), 1e-12)
}

func TestSimilarityClamps(t *testing.T) {
	assert.Equal(t, 0.0, Similarity(feature.Absent[feature.Similarity]()))
	assert.Equal(t, 0.0, Similarity(similarity(feature.Null())))
	assert.Equal(t, 0.0, Similarity(similarity(feature.Num(-0.3))))
	assert.Equal(t, 1.0, Similarity(similarity(feature.Num(7))))
	assert.InDelta(t, 0.37, Similarity(similarity(feature.Num(0.37))), 1e-12)
}

func TestSafetyPenaltyIsAdditive(t *testing.T) {
	assert.Equal(t, 0.0, SafetyPenalty(feature.Absent[feature.Safety]()))
	assert.Equal(t, 0.0, SafetyPenalty(safety()))
	assert.InDelta(t, 0.25, SafetyPenalty(safety(feature.FlagVFDBHit)), 1e-12)
	assert.InDelta(t, 0.20, SafetyPenalty(safety(feature.FlagPossibleTemperate)), 1e-12)
	assert.InDelta(t, 0.45, SafetyPenalty(safety(feature.FlagPossibleTemperate, feature.FlagVFDBHit)), 1e-12)
	assert.Equal(t, 0.0, SafetyPenalty(safety("unrelated")))
}

func TestConfidenceClampsNegative(t *testing.T) {
	got := Confidence(
		feature.Absent[feature.Structural](),
		similarity(feature.Num(0.1)),
		safety(feature.FlagVFDBHit, feature.FlagPossibleTemperate),
	)
	assert.Equal(t, 0.0, got)
}

func TestConfidenceUpperBound(t *testing.T) {
	got := Confidence(structural(feature.Num(1e-100), 1000), similarity(feature.Num(5)), feature.Absent[feature.Safety]())
	assert.Equal(t, 1.0, got)
}

// A VFDB-flagged phage is penalised by 0.25 and routed to manual review.
func TestScenarioVFDBFlag(t *testing.T) {
	ev := safety(feature.FlagVFDBHit)
	assert.InDelta(t, 0.25, SafetyPenalty(ev), 1e-12)
	assert.Equal(t,
		"Manual review recommended: VFDB hit(s) detected. Confirm annotation, exclude if virulence/toxin genes are credible.",
		NextAction([]string{feature.FlagVFDBHit}))
}

// No similarity or structural evidence yields exactly zero and weak evidence.
func TestScenarioNoEvidence(t *testing.T) {
	b := Evaluate(feature.Set{})
	assert.Equal(t, 0.0, b.Confidence)
	assert.Equal(t, ReasonWeak, b.Reason)
}

func TestScenarioStrongStructuralOnly(t *testing.T) {
	b := Evaluate(feature.Set{Structural: structural(feature.Num(1e-8), 5)})

	hScore := 1 - math.Exp(-5.0/3.0)
	require.InDelta(t, 0.811, hScore, 1e-3)
	assert.InDelta(t, 0.7+0.3*hScore, b.Structural, 1e-12)
	assert.InDelta(t, 0.566, b.Confidence, 1e-3)
	assert.Equal(t, ReasonStructural, b.Reason)
}

func TestPrimaryReason(t *testing.T) {
	cases := []struct {
		st, sim float64
		want    Reason
	}{
		{0.5, 0.5, ReasonStructural},
		{0.16, 0.0, ReasonStructural},
		{0.15, 0.0, ReasonWeak},
		{0.15, 0.15, ReasonWeak},
		{0.2, 0.3, ReasonSimilarity},
		{0.9, 0.16, ReasonStructural},
		{0.0, 0.151, ReasonSimilarity},
		{0, 0, ReasonWeak},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PrimaryReason(tc.st, tc.sim), "st=%v sim=%v", tc.st, tc.sim)
	}
}

func TestNextActionPriority(t *testing.T) {
	assert.Equal(t, ActionPlaqueAssay, NextAction(nil))
	assert.Equal(t, ActionVerifyLifestyle, NextAction([]string{feature.FlagPossibleTemperate}))
	assert.Equal(t, ActionVFDBReview, NextAction([]string{feature.FlagPossibleTemperate, feature.FlagVFDBHit}))
	assert.Equal(t, ActionPlaqueAssay, NextAction([]string{"something_else"}))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 0.0, Clamp01(math.Inf(-1)))
	assert.Equal(t, 1.0, Clamp01(math.Inf(1)))
	assert.Equal(t, 0.3, Clamp01(0.3))
}
