package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/phagepick/decision-bundle/internal/assemble"
	"github.com/phagepick/decision-bundle/internal/bundle"
	"github.com/phagepick/decision-bundle/internal/logging"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	record_id        TEXT PRIMARY KEY,
	run_id           TEXT NOT NULL,
	host_id          TEXT NOT NULL,
	pipeline_version TEXT NOT NULL,
	profile          TEXT NOT NULL,
	test_mode        INTEGER NOT NULL,
	config_sha256    TEXT NOT NULL,
	modules_json     TEXT NOT NULL,
	candidates       INTEGER NOT NULL,
	shortlisted      INTEGER NOT NULL,
	ranking_path     TEXT NOT NULL,
	evidence_path    TEXT NOT NULL,
	duration_ms      INTEGER NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS candidate_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id        TEXT NOT NULL,
	phage_id         TEXT NOT NULL,
	rank             INTEGER NOT NULL,
	confidence       REAL NOT NULL,
	primary_reason   TEXT NOT NULL,
	safety_flags     TEXT,
	next_best_action TEXT,
	evidence_json    TEXT,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (record_id) REFERENCES runs(record_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_host ON runs(host_id, created_at);
`

// #endregion schema

// #region store-struct
// Store keeps a history of assembly runs in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region record-run
// Observe records a finished assembly. It makes Store usable as an
// assemble.Observer.
func (s *Store) Observe(ctx context.Context, res *assemble.Result) error {
	_, err := s.RecordRun(ctx, res)
	return err
}

// RecordRun inserts the run and one candidate_log row per ranked phage in a
// single transaction, returning the new record id.
func (s *Store) RecordRun(ctx context.Context, res *assemble.Result) (string, error) {
	b := res.Bundle
	modulesJSON, err := json.Marshal(b.Modules)
	if err != nil {
		return "", fmt.Errorf("marshal modules: %w", err)
	}

	id := uuid.New().String()
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (record_id, run_id, host_id, pipeline_version, profile, test_mode, config_sha256,
		                   modules_json, candidates, shortlisted, ranking_path, evidence_path, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, b.RunID, b.HostID, b.PipelineVersion, b.Profile, b.TestMode, b.ConfigSHA256,
		string(modulesJSON), len(res.Candidates), len(b.Shortlist),
		res.RankingPath, res.EvidencePath, res.Duration.Milliseconds(), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, c := range res.Candidates {
		evJSON, err := json.Marshal(bundle.Flatten(c.Evidence))
		if err != nil {
			return "", fmt.Errorf("marshal evidence %s: %w", c.PhageID, err)
		}
		err = logging.LogDecision(ctx, tx, logging.DecisionEntry{
			RecordID:       id,
			PhageID:        c.PhageID,
			Rank:           c.Rank,
			Confidence:     bundle.Round4(c.Confidence()),
			PrimaryReason:  string(c.Score.Reason),
			SafetyFlags:    bundle.FormatFlags(c.SafetyFlags),
			NextBestAction: c.NextBestAction,
			EvidenceJSON:   string(evJSON),
			CreatedAt:      now,
		})
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// #endregion record-run

// #region list-runs
// ListRuns returns the most recent runs, newest first. An empty hostID lists all hosts.
func (s *Store) ListRuns(ctx context.Context, hostID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE (? = '' OR host_id = ?)
		 ORDER BY created_at DESC, record_id DESC LIMIT ?`, hostID, hostID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion list-runs

// #region get-run
// GetRun retrieves one run with its candidate log, best rank first.
func (s *Store) GetRun(ctx context.Context, recordID string) (RunDetail, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE record_id = ?`, recordID)
	run, err := scanRun(row)
	if err != nil {
		return RunDetail{}, fmt.Errorf("get run %s: %w", recordID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT phage_id, rank, confidence, primary_reason, safety_flags, next_best_action
		 FROM candidate_log WHERE record_id = ? ORDER BY rank ASC`, recordID,
	)
	if err != nil {
		return RunDetail{}, fmt.Errorf("get candidates %s: %w", recordID, err)
	}
	defer rows.Close()

	detail := RunDetail{Run: run}
	for rows.Next() {
		var c CandidateRow
		var flags, action sql.NullString
		if err := rows.Scan(&c.PhageID, &c.Rank, &c.Confidence, &c.PrimaryReason, &flags, &action); err != nil {
			return RunDetail{}, fmt.Errorf("scan candidate: %w", err)
		}
		c.SafetyFlags = flags.String
		c.NextBestAction = action.String
		detail.Candidates = append(detail.Candidates, c)
	}
	return detail, rows.Err()
}

// #endregion get-run

// #region scan
const runColumns = `record_id, run_id, host_id, pipeline_version, profile, test_mode, config_sha256,
	modules_json, candidates, shortlisted, ranking_path, evidence_path, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var modulesJSON, createdStr string
	var durationMS int64
	err := sc.Scan(&r.RecordID, &r.RunID, &r.HostID, &r.PipelineVersion, &r.Profile, &r.TestMode,
		&r.ConfigSHA256, &modulesJSON, &r.CandidateCount, &r.Shortlisted, &r.RankingPath, &r.EvidencePath,
		&durationMS, &createdStr)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(modulesJSON), &r.Modules); err != nil {
		return Run{}, fmt.Errorf("unmarshal modules: %w", err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return r, nil
}

// #endregion scan
