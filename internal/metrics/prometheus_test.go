package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phagepick/decision-bundle/internal/assemble"
	"github.com/phagepick/decision-bundle/internal/bundle"
	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/rank"
	"github.com/phagepick/decision-bundle/internal/status"
)

func sampleResult() *assemble.Result {
	cands := []rank.Candidate{
		rank.Score("H1", "P1", feature.Set{Similarity: feature.Present(feature.Similarity{Value: feature.Num(0.9)})}),
		rank.Score("H1", "P2", feature.Set{Safety: feature.Present(feature.Safety{
			Flags: []string{feature.FlagVFDBHit, feature.FlagPossibleTemperate},
		})}),
	}
	rank.Sort(cands)
	return &assemble.Result{
		Bundle: &bundle.Bundle{
			HostID:   "H1",
			TestMode: true,
			Modules: map[string]status.Record{
				status.ModuleSimilarity: {Status: status.StatusMocked},
				status.ModuleSafety:     {Status: status.StatusSkipped},
			},
			Shortlist: bundle.Shortlist(cands, 1),
		},
		Candidates: cands,
		Started:    time.Unix(1_700_000_000, 0),
		Duration:   250 * time.Millisecond,
	}
}

func TestRecord(t *testing.T) {
	r := NewRecorder("")
	r.Record(sampleResult())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Candidates))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Shortlisted))
	assert.Equal(t, 1.7e9, testutil.ToFloat64(r.LastRun))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SafetyFlags.WithLabelValues(feature.FlagVFDBHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ModuleStatus.WithLabelValues(status.ModuleSimilarity, "mocked")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ModuleStatus.WithLabelValues(status.ModuleSimilarity, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ModuleStatus.WithLabelValues(status.ModuleSafety, "skipped")))
}

func TestRecordAccumulates(t *testing.T) {
	r := NewRecorder("")
	r.Record(sampleResult())
	r.Record(sampleResult())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.SafetyFlags.WithLabelValues(feature.FlagPossibleTemperate)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Candidates))
}

func TestObserveWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phagebundle.prom")
	r := NewRecorder(path)

	var obs assemble.Observer = r
	require.NoError(t, obs.Observe(context.Background(), sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE phagebundle_runs_total counter")
	assert.Contains(t, text, `phagebundle_runs_total{test_mode="true"} 1`)
	assert.Contains(t, text, "phagebundle_confidence_score_count 2")
}

func TestObserveWithoutPath(t *testing.T) {
	r := NewRecorder("")
	require.NoError(t, r.Observe(context.Background(), sampleResult()))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("true")))
}
