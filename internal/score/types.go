package score

// #region reason
// Reason names the strongest positive evidence behind a candidate.
type Reason string

const (
	ReasonStructural Reason = "structural_support"
	ReasonSimilarity Reason = "sequence_similarity"
	ReasonWeak       Reason = "weak_evidence"
)

// #endregion reason

// #region weights
// Fixed scoring constants. They are part of the ranking contract and are not configurable.
const (
	StructuralWeight = 0.6
	SimilarityWeight = 0.4

	EvalueWeight   = 0.7
	HitCountWeight = 0.3
	EvalueFloor    = 1e-180
	EvalueLogLow   = 2.0 // -log10(1e-2) maps to 0
	EvalueLogSpan  = 6.0 // -log10(1e-8) maps to 1
	HitSaturation  = 3.0

	VFDBPenalty      = 0.25
	TemperatePenalty = 0.20

	ReasonThreshold = 0.15
)

// #endregion weights

// #region actions
// Recommended next steps, keyed by the highest-priority safety flag.
const (
	ActionVFDBReview      = "Manual review recommended: VFDB hit(s) detected. Confirm annotation, exclude if virulence/toxin genes are credible."
	ActionVerifyLifestyle = "Verify lifestyle: integrase/lysogeny markers detected. Prefer strictly lytic phages for therapy; confirm with induction / genome review."
	ActionPlaqueAssay     = "Run plaque assay; if positive, measure EOP and optimize growth conditions."
)

// #endregion actions

// #region breakdown
// Breakdown is the full scoring result for one candidate.
type Breakdown struct {
	Structural float64
	Similarity float64
	Penalty    float64
	Confidence float64
	Reason     Reason
}

// #endregion breakdown
