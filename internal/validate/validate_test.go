package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phagepick/decision-bundle/internal/bundle"
	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/rank"
	"github.com/phagepick/decision-bundle/internal/status"
)

const hexSum = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func sampleCandidates() []rank.Candidate {
	mocked := []rank.Candidate{}
	for _, pid := range []string{"P1", "P2", "P3"} {
		mocked = append(mocked, rank.Score("H1", pid, feature.Set{
			Similarity: feature.Present(feature.MockSimilarity("H1", pid)),
			Structural: feature.Present(feature.MockStructural("H1", pid)),
			Safety:     feature.Present(feature.MockSafety(pid)),
		}))
	}
	rank.Sort(mocked)
	return mocked
}

func sampleBundle(cands []rank.Candidate) *bundle.Bundle {
	rec := status.Record{Status: status.StatusMocked, Tool: feature.MockTool}
	return &bundle.Bundle{
		PipelineVersion: "0.1.0-mock",
		RunID:           "2026-01-02T03:04:05Z",
		HostID:          "H1",
		Profile:         "custom",
		TestMode:        true,
		ConfigSHA256:    hexSum,
		ManifestHashes:  map[string]string{"phages.tsv": hexSum, "hosts.tsv": hexSum},
		Modules: map[string]status.Record{
			status.ModuleSimilarity: rec,
			status.ModuleStructural: rec,
			status.ModuleSafety:     rec,
		},
		Params:    map[string]any{"top_n": 2},
		Versions:  map[string]any{},
		Shortlist: bundle.Shortlist(cands, 2),
	}
}

func writeArtifacts(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cands := sampleCandidates()
	ranking, err := bundle.RankingBytes(cands)
	require.NoError(t, err)
	evidence, err := bundle.EvidenceBytes(sampleBundle(cands))
	require.NoError(t, err)
	return writeFile(t, dir, "ranking.csv", ranking), writeFile(t, dir, "evidence.json", evidence)
}

func defaultSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := LoadSchema("")
	require.NoError(t, err)
	return s
}

func TestWriterOutputValidates(t *testing.T) {
	rankingPath, evidencePath := writeArtifacts(t)

	rep := Run(rankingPath, evidencePath, defaultSchema(t))
	assert.Empty(t, rep.Errors())
	assert.NoError(t, rep.Err())

	var out bytes.Buffer
	require.NoError(t, rep.Write(&out))
	assert.Equal(t, "VALIDATION OK\n", out.String())
}

func TestRankingEmpty(t *testing.T) {
	errs := checkRanking(strings.NewReader(""))
	assert.Equal(t, []string{"ranking.csv is empty"}, errs)
}

func TestRankingHeaderMissingColumn(t *testing.T) {
	errs := checkRanking(strings.NewReader("host_id,phage_id,rank,confidence_score,primary_reason\n"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "ranking.csv header mismatch")
	assert.Contains(t, errs[0], `"safety_flags"`)
}

func TestRankingRowErrorsUseFileRowNumbers(t *testing.T) {
	body := strings.Join([]string{
		"host_id,phage_id,rank,confidence_score,primary_reason,safety_flags",
		"H1,P1,1,0.5000,weak_evidence,none",
		"H1,P2,two,0.4000,weak_evidence,none",
		"H1,P3,3,high,weak_evidence,none",
		"H1,P4,4",
		"",
	}, "\n")
	errs := checkRanking(strings.NewReader(body))
	assert.Equal(t, []string{
		"ranking.csv row 3: rank is not an int: two",
		"ranking.csv row 4: confidence_score is not a float: high",
		"ranking.csv row 5 has 3 columns (expected 6)",
	}, errs)
}

func TestMissingColumnStillChecksEvidence(t *testing.T) {
	_, evidencePath := writeArtifacts(t)
	dir := t.TempDir()
	rankingPath := writeFile(t, dir, "ranking.csv", []byte("host_id,phage_id,rank,confidence_score,primary_reason\n"))
	badEvidence := writeFile(t, dir, "bad.json", []byte(`{"host_id": 5}`))

	rep := Run(rankingPath, evidencePath, defaultSchema(t))
	require.Len(t, rep.Ranking, 1)
	assert.Empty(t, rep.Evidence)

	rep = Run(rankingPath, badEvidence, defaultSchema(t))
	require.Len(t, rep.Ranking, 1)
	assert.NotEmpty(t, rep.Evidence)
	assert.ErrorIs(t, rep.Err(), ErrInvalid)
}

func TestMalformedRankingRowStillChecksEvidence(t *testing.T) {
	dir := t.TempDir()
	body := strings.Join([]string{
		"host_id,phage_id,rank,confidence_score,primary_reason,safety_flags",
		`H1,P"1,1,0.5000,weak_evidence,none`,
		`H1,"P2,2,0.4000,weak_evidence,none`,
		"",
	}, "\n")
	rankingPath := writeFile(t, dir, "ranking.csv", []byte(body))
	badEvidence := writeFile(t, dir, "bad.json", []byte(`{"host_id": 5}`))

	rep := Run(rankingPath, badEvidence, defaultSchema(t))
	require.Len(t, rep.Ranking, 1, "a bare quote is tolerated, an unterminated field is reported")
	assert.Contains(t, rep.Ranking[0], "ranking.csv row 3")
	assert.NotEmpty(t, rep.Evidence)
	assert.ErrorIs(t, rep.Err(), ErrInvalid)
}

func TestUnreadableInputsAreViolations(t *testing.T) {
	dir := t.TempDir()
	badEvidence := writeFile(t, dir, "bad.json", []byte(`{"host_id": 5}`))

	rep := Run(filepath.Join(dir, "missing.csv"), badEvidence, defaultSchema(t))
	require.Len(t, rep.Ranking, 1)
	assert.Contains(t, rep.Ranking[0], "ranking.csv could not be read")
	assert.NotEmpty(t, rep.Evidence)

	rankingPath, _ := writeArtifacts(t)
	rep = Run(rankingPath, filepath.Join(dir, "missing.json"), defaultSchema(t))
	assert.Empty(t, rep.Ranking)
	assert.Equal(t, 1, len(rep.Evidence))
	assert.Contains(t, rep.Evidence[0], "evidence bundle could not be read")
}

func TestEvidenceNumbersKeepTheirLiteral(t *testing.T) {
	data, err := bundle.EvidenceBytes(sampleBundle(sampleCandidates()))
	require.NoError(t, err)
	assert.Empty(t, defaultSchema(t).checkDocument(data))

	errs := defaultSchema(t).checkDocument(bytes.Replace(data, []byte(`"rank": 1,`), []byte(`"rank": 1.5,`), 1))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "/shortlist/0/rank")

	errs = defaultSchema(t).checkDocument(append(bytes.Clone(data), []byte(" {}")...))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not valid JSON")
}

func TestEvidenceCollectsEveryViolation(t *testing.T) {
	cands := sampleCandidates()
	b := sampleBundle(cands)
	b.ConfigSHA256 = "not-a-digest"
	b.RunID = "yesterday"
	b.Shortlist[0].Rank = 0

	data, err := bundle.EvidenceBytes(b)
	require.NoError(t, err)
	errs := defaultSchema(t).checkDocument(data)

	require.Len(t, errs, 3)
	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "/config_sha256")
	assert.Contains(t, joined, "/run_id")
	assert.Contains(t, joined, "/shortlist/0/rank")
	assert.IsNonDecreasing(t, errs)
}

func TestEvidenceNotJSON(t *testing.T) {
	errs := defaultSchema(t).checkDocument([]byte("{oops"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not valid JSON")
}

func TestUnreadableSchemaIsFatal(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = CompileSchema([]byte("not a schema"))
	assert.Error(t, err)
}

func TestFailedReportFormat(t *testing.T) {
	rep := &Report{Ranking: []string{"a"}, Evidence: []string{"b"}}
	var out bytes.Buffer
	require.NoError(t, rep.Write(&out))
	assert.Equal(t, "VALIDATION FAILED\n- a\n- b\n", out.String())
}
