package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phagepick/decision-bundle/internal/feature"
)

func prov(status feature.Status, tool, version string) feature.Provenance {
	p := feature.Provenance{Status: status, Tool: tool}
	if version != "" {
		p.ToolVersion = &version
	}
	return p
}

func TestInferDisabled(t *testing.T) {
	rec := Infer(Input{Enabled: false, TestMode: true, DefaultTool: DefaultSimilarityTool})
	assert.Equal(t, StatusSkipped, rec.Status)
	assert.Equal(t, "sourmash", rec.Tool)
	require.NotNil(t, rec.Reason)
	assert.Equal(t, "module disabled", *rec.Reason)
}

func TestInferTestMode(t *testing.T) {
	rec := Infer(Input{
		Enabled: true, TestMode: true, DefaultTool: DefaultStructuralTool,
		Samples: []feature.Provenance{prov(feature.StatusOK, "foldseek", "9")},
	})
	assert.Equal(t, StatusMocked, rec.Status)
	assert.Equal(t, "mock", rec.Tool)
	assert.Nil(t, rec.ToolVersion)
	assert.Nil(t, rec.Reason)
}

func TestInferOKTakesToolFromSample(t *testing.T) {
	rec := Infer(Input{
		Enabled: true, DefaultTool: DefaultStructuralTool,
		Samples: []feature.Provenance{prov(feature.StatusOK, "foldseek-gpu", "9.427df8a")},
	})
	assert.Equal(t, StatusOK, rec.Status)
	assert.Equal(t, "foldseek-gpu", rec.Tool)
	require.NotNil(t, rec.ToolVersion)
	assert.Equal(t, "9.427df8a", *rec.ToolVersion)
}

func TestInferOKFallsBackToDefaultTool(t *testing.T) {
	rec := Infer(Input{
		Enabled: true, DefaultTool: DefaultSafetyTool,
		Samples: []feature.Provenance{prov(feature.StatusOK, "", "")},
	})
	assert.Equal(t, StatusOK, rec.Status)
	assert.Equal(t, "abricate", rec.Tool)
}

func TestInferUnavailable(t *testing.T) {
	for _, st := range []feature.Status{feature.StatusUnavailable, feature.StatusError} {
		rec := Infer(Input{
			Enabled: true, DefaultTool: DefaultSimilarityTool,
			Samples: []feature.Provenance{prov(st, "sourmash", "")},
		})
		assert.Equal(t, StatusUnavailable, rec.Status, st)
		require.NotNil(t, rec.Reason)
	}
}

func TestInferUnknown(t *testing.T) {
	cases := map[string][]feature.Provenance{
		"noSamples":     nil,
		"noStatus":      {prov("", "sourmash", "")},
		"mockedOutside": {prov(feature.StatusMocked, "mock", "")},
	}
	for name, samples := range cases {
		t.Run(name, func(t *testing.T) {
			rec := Infer(Input{Enabled: true, DefaultTool: DefaultSimilarityTool, Samples: samples})
			assert.Equal(t, StatusUnknown, rec.Status)
			assert.Equal(t, "sourmash", rec.Tool)
		})
	}
}

func TestSampleSet(t *testing.T) {
	set := feature.Set{
		Similarity: feature.Present(feature.Similarity{Provenance: prov(feature.StatusOK, "sourmash", "4.8")}),
	}
	samples := SampleSet(set)
	require.Len(t, samples[ModuleSimilarity], 1)
	assert.Equal(t, "sourmash", samples[ModuleSimilarity][0].Tool)
	assert.Empty(t, samples[ModuleStructural])
	assert.Empty(t, samples[ModuleSafety])
}
