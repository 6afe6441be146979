package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/phagepick/decision-bundle/internal/bundle"
	"github.com/phagepick/decision-bundle/internal/rank"
)

// Tolerance is the allowed drift of a replayed confidence score.
const Tolerance = 1e-4

// #region types

// ReplayResult is the replayed outcome of one candidate.
type ReplayResult struct {
	PhageID         string
	Rank            int
	ConfidenceScore float64
	PrimaryReason   string
	NextBestAction  string
	SafetyFlags     []string
}

// Mismatch is one difference between expected and replayed results.
type Mismatch struct {
	PhageID string
	Field   string
	Want    string
	Got     string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s expected %s, got %s", m.PhageID, m.Field, m.Want, m.Got)
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCandidates int
	Checked         int
	Matched         int
	Mismatches      []Mismatch
}

// Passed reports whether every expected result matched.
func (s ReplaySummary) Passed() bool {
	return len(s.Mismatches) == 0
}

// #endregion types

// #region replay

// Replay ranks the fixture's candidates exactly as an assembly run would.
func Replay(ctx context.Context, f *Fixture, workers int) ([]ReplayResult, error) {
	cands, err := rank.Build(ctx, f.HostID, f.PhageIDs(), f.Source(), workers)
	if err != nil {
		return nil, err
	}
	return results(cands), nil
}

func results(cands []rank.Candidate) []ReplayResult {
	out := make([]ReplayResult, 0, len(cands))
	for _, c := range cands {
		out = append(out, ReplayResult{
			PhageID:         c.PhageID,
			Rank:            c.Rank,
			ConfidenceScore: bundle.Round4(c.Confidence()),
			PrimaryReason:   string(c.Score.Reason),
			NextBestAction:  c.NextBestAction,
			SafetyFlags:     c.SafetyFlags,
		})
	}
	return out
}

// Compare checks replayed results against the fixture's expectations. An
// expectation whose phage was not replayed is a mismatch on "presence".
func Compare(f *Fixture, got []ReplayResult) ReplaySummary {
	byID := make(map[string]ReplayResult, len(got))
	for _, r := range got {
		byID[r.PhageID] = r
	}

	sum := ReplaySummary{TotalCandidates: len(got)}
	for _, exp := range f.ExpectedResults {
		sum.Checked++
		r, ok := byID[exp.PhageID]
		if !ok {
			sum.Mismatches = append(sum.Mismatches, Mismatch{PhageID: exp.PhageID, Field: "presence", Want: "ranked", Got: "missing"})
			continue
		}
		before := len(sum.Mismatches)
		if r.Rank != exp.Rank {
			sum.Mismatches = append(sum.Mismatches, Mismatch{exp.PhageID, "rank", fmt.Sprint(exp.Rank), fmt.Sprint(r.Rank)})
		}
		if math.Abs(r.ConfidenceScore-exp.ConfidenceScore) > Tolerance {
			sum.Mismatches = append(sum.Mismatches, Mismatch{exp.PhageID, "confidence_score",
				fmt.Sprintf("%.4f", exp.ConfidenceScore), fmt.Sprintf("%.4f", r.ConfidenceScore)})
		}
		if r.PrimaryReason != exp.PrimaryReason {
			sum.Mismatches = append(sum.Mismatches, Mismatch{exp.PhageID, "primary_reason", exp.PrimaryReason, r.PrimaryReason})
		}
		if exp.NextBestAction != "" && r.NextBestAction != exp.NextBestAction {
			sum.Mismatches = append(sum.Mismatches, Mismatch{exp.PhageID, "next_best_action", exp.NextBestAction, r.NextBestAction})
		}
		if len(sum.Mismatches) == before {
			sum.Matched++
		}
	}
	return sum
}

// #endregion replay

// #region export

// Export captures the evidence of every phage from src and the ranking it
// currently produces as a new golden fixture.
func Export(ctx context.Context, description, hostID string, phageIDs []string, src rank.Source, workers int) (*Fixture, error) {
	f := &Fixture{Description: description, HostID: hostID}
	for _, pid := range phageIDs {
		set := src.Load(hostID, pid)
		f.Candidates = append(f.Candidates, FixtureCandidate{
			PhageID:    pid,
			Similarity: set.Similarity.Ptr(),
			Structural: set.Structural.Ptr(),
			Safety:     set.Safety.Ptr(),
		})
	}

	got, err := Replay(ctx, f, workers)
	if err != nil {
		return nil, err
	}
	for _, r := range got {
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{
			PhageID:         r.PhageID,
			Rank:            r.Rank,
			ConfidenceScore: r.ConfidenceScore,
			PrimaryReason:   r.PrimaryReason,
			NextBestAction:  r.NextBestAction,
		})
	}
	return f, nil
}

// #endregion export
