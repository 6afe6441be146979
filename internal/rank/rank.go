package rank

import (
	"cmp"
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/score"
)

// #region types
// Source supplies the evidence for one host×phage pair.
type Source interface {
	Load(hostID, phageID string) feature.Set
}

// Candidate is one scored and ranked phage for the host being processed.
type Candidate struct {
	HostID         string
	PhageID        string
	Rank           int
	Score          score.Breakdown
	SafetyFlags    []string
	NextBestAction string
	Evidence       feature.Set
}

// Confidence is the combined score of the candidate.
func (c Candidate) Confidence() float64 {
	return c.Score.Confidence
}

// #endregion types

// #region build
// Build scores every phage against hostID and returns the ranked candidates.
// Scoring fans out over at most workers goroutines (0 = NumCPU); each worker
// writes only its own slot, and the single sort runs after all of them finish.
func Build(ctx context.Context, hostID string, phageIDs []string, src Source, workers int) ([]Candidate, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]Candidate, len(phageIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pid := range phageIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Score(hostID, pid, src.Load(hostID, pid))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Sort(out)
	return out, nil
}

// Score builds an unranked candidate from its evidence.
func Score(hostID, phageID string, set feature.Set) Candidate {
	flags := set.Flags()
	return Candidate{
		HostID:         hostID,
		PhageID:        phageID,
		Score:          score.Evaluate(set),
		SafetyFlags:    flags,
		NextBestAction: score.NextAction(flags),
		Evidence:       set,
	}
}

// #endregion build

// #region sort
// Sort orders candidates by confidence (descending), then phage_id (ascending),
// and assigns dense 1-based ranks.
func Sort(cands []Candidate) {
	slices.SortStableFunc(cands, Compare)
	for i := range cands {
		cands[i].Rank = i + 1
	}
}

// Compare is the ranking order used by Sort.
func Compare(a, b Candidate) int {
	if c := cmp.Compare(b.Score.Confidence, a.Score.Confidence); c != 0 {
		return c
	}
	return cmp.Compare(a.PhageID, b.PhageID)
}

// Top returns the first n candidates; n larger than the slice is clamped.
func Top(cands []Candidate, n int) []Candidate {
	if n < 0 {
		n = 0
	}
	return cands[:min(n, len(cands))]
}

// #endregion sort
