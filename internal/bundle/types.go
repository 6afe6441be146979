package bundle

import (
	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/status"
)

// #region ranking-contract
// RankingColumns is the fixed header of the ranking table.
var RankingColumns = []string{"host_id", "phage_id", "rank", "confidence_score", "primary_reason", "safety_flags"}

// NoFlags is written in the safety_flags column when a candidate has none.
const NoFlags = "none"

// FlagSeparator joins multiple safety flags in one ranking cell.
const FlagSeparator = ";"

// #endregion ranking-contract

// #region evidence-bundle
// Bundle is the evidence bundle written next to the ranking table.
type Bundle struct {
	PipelineVersion string                   `json:"pipeline_version"`
	RunID           string                   `json:"run_id"`
	HostID          string                   `json:"host_id"`
	Profile         string                   `json:"profile"`
	TestMode        bool                     `json:"test_mode"`
	ConfigSHA256    string                   `json:"config_sha256"`
	ManifestHashes  map[string]string        `json:"manifest_hashes"`
	Modules         map[string]status.Record `json:"modules"`
	Params          map[string]any           `json:"params"`
	Versions        map[string]any           `json:"versions"`
	Shortlist       []Entry                  `json:"shortlist"`
}

// Entry is one shortlisted candidate with UI-sized evidence.
type Entry struct {
	HostID          string   `json:"host_id"`
	PhageID         string   `json:"phage_id"`
	Rank            int      `json:"rank"`
	ConfidenceScore float64  `json:"confidence_score"`
	PrimaryReason   string   `json:"primary_reason"`
	SafetyFlags     []string `json:"safety_flags"`
	Evidence        Evidence `json:"evidence"`
	NextBestAction  string   `json:"next_best_action"`
}

// Evidence holds the flattened per-module evidence; nil means the module had no artefact.
type Evidence struct {
	Similarity *SimilaritySummary `json:"similarity"`
	Structural *StructuralSummary `json:"structural"`
	Safety     *SafetySummary     `json:"safety"`
}

// SimilaritySummary is the shortlist view of a similarity feature.
type SimilaritySummary struct {
	Metric string         `json:"metric"`
	Value  feature.Float  `json:"value"`
	Status feature.Status `json:"status"`
	Tool   string         `json:"tool"`
}

// StructuralSummary is the shortlist view of a structural feature. The raw
// top_targets list is left out.
type StructuralSummary struct {
	HitCount     int            `json:"hit_count"`
	BestEvalue   feature.Float  `json:"best_evalue"`
	BestBitscore feature.Float  `json:"best_bitscore"`
	QcovMean     feature.Float  `json:"qcov_mean"`
	TcovMean     feature.Float  `json:"tcov_mean"`
	Status       feature.Status `json:"status"`
	Tool         string         `json:"tool"`
}

// SafetySummary is the shortlist view of a safety feature.
type SafetySummary struct {
	VFDBHits      int            `json:"vfdb_hits"`
	IntegraseLike bool           `json:"integrase_like"`
	TRNACount     *int           `json:"tRNA_count"`
	Flags         []string       `json:"flags"`
	Status        feature.Status `json:"status"`
	Tool          string         `json:"tool"`
}

// #endregion evidence-bundle
