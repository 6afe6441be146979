package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phagepick/decision-bundle/internal/feature"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a golden ranking fixture: the
// evidence of every candidate inline, plus the ranking it must produce.
type Fixture struct {
	Description     string                  `json:"description"`
	HostID          string                  `json:"host_id"`
	Candidates      []FixtureCandidate      `json:"candidates"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureCandidate holds one phage's feature documents. A nil feature is absent evidence.
type FixtureCandidate struct {
	PhageID    string              `json:"phage_id"`
	Similarity *feature.Similarity `json:"similarity,omitempty"`
	Structural *feature.Structural `json:"structural,omitempty"`
	Safety     *feature.Safety     `json:"safety,omitempty"`
}

// FixtureExpectedResult captures the expected outcome per phage.
type FixtureExpectedResult struct {
	PhageID         string  `json:"phage_id"`
	Rank            int     `json:"rank"`
	ConfidenceScore float64 `json:"confidence_score"`
	PrimaryReason   string  `json:"primary_reason"`
	NextBestAction  string  `json:"next_best_action,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.HostID == "" {
		return nil, fmt.Errorf("fixture %s: host_id is required", path)
	}
	return &f, nil
}

// Save writes the fixture as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToSet converts a FixtureCandidate to its evidence set.
func (fc *FixtureCandidate) ToSet() feature.Set {
	return feature.Set{
		Similarity: feature.FromPtr(fc.Similarity),
		Structural: feature.FromPtr(fc.Structural),
		Safety:     feature.FromPtr(fc.Safety),
	}
}

// PhageIDs lists the fixture's candidates in manifest order.
func (f *Fixture) PhageIDs() []string {
	ids := make([]string, 0, len(f.Candidates))
	for _, c := range f.Candidates {
		ids = append(ids, c.PhageID)
	}
	return ids
}

// Source serves the fixture's evidence to the ranker.
func (f *Fixture) Source() MemorySource {
	src := make(MemorySource, len(f.Candidates))
	for i := range f.Candidates {
		src[f.Candidates[i].PhageID] = f.Candidates[i].ToSet()
	}
	return src
}

// #endregion fixture-loader

// #region memory-source

// MemorySource is an in-memory rank.Source keyed by phage id. It ignores the host.
type MemorySource map[string]feature.Set

// Load implements rank.Source.
func (m MemorySource) Load(_, phageID string) feature.Set {
	return m[phageID]
}

// #endregion memory-source
