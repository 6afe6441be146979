// Package testplan renders the ranking and evidence bundle as a Markdown
// test plan for the bench.
package testplan

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTopN is the number of rows rendered when no limit is given.
const DefaultTopN = 10

// NotProvided fills the action column when the shortlist has no entry.
const NotProvided = "Not provided"

// Row is one ranking record keyed by column name.
type Row map[string]string

// Evidence is the part of the evidence bundle the plan reads.
type Evidence struct {
	HostID    string   `json:"host_id"`
	Shortlist []Action `json:"shortlist"`
}

// Action is the recommendation attached to one shortlisted phage.
type Action struct {
	PhageID        string `json:"phage_id"`
	NextBestAction string `json:"next_best_action"`
}

// NextAction returns the shortlist action for phageID, if any.
func (e *Evidence) NextAction(phageID string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, s := range e.Shortlist {
		if s.PhageID == phageID {
			return s.NextBestAction, s.NextBestAction != ""
		}
	}
	return "", false
}

// LoadRanking reads a ranking table into header-keyed rows.
func LoadRanking(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ranking: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ranking %s: %w", path, err)
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read ranking %s: %w", path, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
}

// LoadEvidence reads the fields of an evidence bundle used by the plan.
func LoadEvidence(path string) (*Evidence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence: %w", err)
	}
	var ev Evidence
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse evidence %s: %w", path, err)
	}
	return &ev, nil
}

// Render builds the Markdown plan from the first topN ranking rows.
func Render(rows []Row, ev *Evidence, topN int, now time.Time) string {
	host := ""
	if len(rows) > 0 {
		host = rows[0]["host_id"]
	}
	if host == "" && ev != nil {
		host = ev.HostID
	}
	if host == "" {
		host = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Test plan for host %s\n\n", host)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Truncate(time.Second).Format(time.RFC3339))
	b.WriteString("## Top candidates\n\n")

	top := rows[:min(max(topN, 0), len(rows))]
	if len(top) == 0 {
		b.WriteString("_No ranking rows found._\n")
		return b.String()
	}
	b.WriteString("| Rank | Phage | Confidence | Primary reason | Next best action |\n")
	b.WriteString("| ---- | ----- | ---------- | -------------- | ---------------- |\n")
	for _, r := range top {
		action, ok := ev.NextAction(r["phage_id"])
		if !ok {
			action = NotProvided
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			r["rank"], r["phage_id"], r["confidence_score"], r["primary_reason"], action)
	}
	return b.String()
}

// Write renders the plan to path, creating parent directories.
func Write(path string, rows []Row, ev *Evidence, topN int, now time.Time) (string, error) {
	md := Render(rows, ev, topN, now)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create plan dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return md, nil
}
