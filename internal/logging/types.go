package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the candidate_log table: how one phage was
// ranked in one recorded run.
type DecisionEntry struct {
	RecordID       string
	PhageID        string
	Rank           int
	Confidence     float64
	PrimaryReason  string
	SafetyFlags    string // ranking-cell form, "none" when empty
	NextBestAction string
	EvidenceJSON   string
	CreatedAt      time.Time
}

// #endregion decision-entry
