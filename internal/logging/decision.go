package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// #region log-decision
// LogDecision writes a ranking decision to the candidate_log table.
func LogDecision(ctx context.Context, db Execer, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO candidate_log (record_id, phage_id, rank, confidence, primary_reason, safety_flags, next_best_action, evidence_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RecordID,
		entry.PhageID,
		entry.Rank,
		entry.Confidence,
		entry.PrimaryReason,
		nullIfEmpty(entry.SafetyFlags),
		nullIfEmpty(entry.NextBestAction),
		nullIfEmpty(entry.EvidenceJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision %s: %w", entry.PhageID, err)
	}
	return nil
}

// #endregion log-decision

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
