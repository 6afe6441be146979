// Package ledger records every assembly run and its per-candidate decisions
// in a local SQLite database so past shortlists can be inspected later.
package ledger

import (
	"time"

	"github.com/phagepick/decision-bundle/internal/status"
)

// #region run
// Run is one row of the runs table.
type Run struct {
	RecordID        string                   `json:"record_id"`
	RunID           string                   `json:"run_id"`
	HostID          string                   `json:"host_id"`
	PipelineVersion string                   `json:"pipeline_version"`
	Profile         string                   `json:"profile"`
	TestMode        bool                     `json:"test_mode"`
	ConfigSHA256    string                   `json:"config_sha256"`
	Modules         map[string]status.Record `json:"modules"`
	CandidateCount  int                      `json:"candidate_count"`
	Shortlisted     int                      `json:"shortlisted"`
	RankingPath     string                   `json:"ranking_path"`
	EvidencePath    string                   `json:"evidence_path"`
	Duration        time.Duration            `json:"duration_ns"`
	CreatedAt       time.Time                `json:"created_at"`
}

// #endregion run

// #region detail
// CandidateRow is one logged ranking decision.
type CandidateRow struct {
	PhageID        string  `json:"phage_id"`
	Rank           int     `json:"rank"`
	Confidence     float64 `json:"confidence_score"`
	PrimaryReason  string  `json:"primary_reason"`
	SafetyFlags    string  `json:"safety_flags"`
	NextBestAction string  `json:"next_best_action"`
}

// RunDetail is a run together with its candidate log.
type RunDetail struct {
	Run
	Candidates []CandidateRow `json:"candidates"`
}

// #endregion detail
