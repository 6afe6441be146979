package rank

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/score"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mapSource serves fixed evidence per phage.
type mapSource map[string]feature.Set

func (m mapSource) Load(_, phageID string) feature.Set { return m[phageID] }

func sim(v float64) feature.Evidence[feature.Similarity] {
	return feature.Present(feature.Similarity{Value: feature.Num(v)})
}

func TestBuildOrdersByConfidenceThenPhageID(t *testing.T) {
	src := mapSource{
		"P3": {Similarity: sim(0.5)},
		"P1": {Similarity: sim(0.5)},
		"P2": {Similarity: sim(0.9)},
		"P4": {},
	}

	cands, err := Build(context.Background(), "H1", []string{"P4", "P3", "P2", "P1"}, src, 2)
	require.NoError(t, err)

	var order []string
	for i, c := range cands {
		order = append(order, c.PhageID)
		assert.Equal(t, i+1, c.Rank)
		assert.Equal(t, "H1", c.HostID)
	}
	assert.Equal(t, []string{"P2", "P1", "P3", "P4"}, order)
	assert.Equal(t, score.ReasonWeak, cands[3].Score.Reason)
}

func TestBuildRanksAreDenseAndTotal(t *testing.T) {
	src := mapSource{}
	var ids []string
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("P%03d", i)
		ids = append(ids, id)
		// only 7 distinct scores so ties dominate
		src[id] = feature.Set{Similarity: sim(float64(i%7) / 10)}
	}

	cands, err := Build(context.Background(), "H1", ids, src, 8)
	require.NoError(t, err)
	require.Len(t, cands, len(ids))

	seen := map[int]bool{}
	for i := range cands {
		seen[cands[i].Rank] = true
		if i == 0 {
			continue
		}
		prev, cur := cands[i-1], cands[i]
		require.Less(t, Compare(prev, cur), 0, "%s before %s", prev.PhageID, cur.PhageID)
		if prev.Confidence() == cur.Confidence() {
			assert.Less(t, prev.PhageID, cur.PhageID)
		}
	}
	for r := 1; r <= len(ids); r++ {
		assert.True(t, seen[r], "rank %d missing", r)
	}
}

func TestBuildIsDeterministicAcrossWorkerCounts(t *testing.T) {
	src := mapSource{}
	var ids []string
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("phage_%d", i)
		ids = append(ids, id)
		src[id] = feature.Set{
			Similarity: feature.Present(feature.MockSimilarity("H1", id)),
			Structural: feature.Present(feature.MockStructural("H1", id)),
			Safety:     feature.Present(feature.MockSafety(id)),
		}
	}

	a, err := Build(context.Background(), "H1", ids, src, 1)
	require.NoError(t, err)
	b, err := Build(context.Background(), "H1", ids, src, 16)
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].PhageID, b[i].PhageID)
		assert.Equal(t, a[i].Confidence(), b[i].Confidence())
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, "H1", []string{"P1", "P2"}, mapSource{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildEmptyManifest(t *testing.T) {
	cands, err := Build(context.Background(), "H1", nil, mapSource{}, 0)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestScoreAttachesNextAction(t *testing.T) {
	c := Score("H1", "P1", feature.Set{
		Safety: feature.Present(feature.Safety{Flags: []string{feature.FlagPossibleTemperate}}),
	})
	assert.Equal(t, score.ActionVerifyLifestyle, c.NextBestAction)
	assert.Equal(t, []string{feature.FlagPossibleTemperate}, c.SafetyFlags)
	assert.Equal(t, 0.0, c.Confidence())
}

func TestTop(t *testing.T) {
	cands := []Candidate{{PhageID: "a"}, {PhageID: "b"}, {PhageID: "c"}}
	assert.Len(t, Top(cands, 2), 2)
	assert.Len(t, Top(cands, 10), 3)
	assert.Empty(t, Top(cands, 0))
	assert.Empty(t, Top(cands, -1))
}
