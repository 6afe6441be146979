package status

import (
	"github.com/phagepick/decision-bundle/internal/feature"
)

// #region types
// Status is the inferred run state of one evidence module.
type Status string

const (
	StatusOK          Status = "ok"
	StatusMocked      Status = "mocked"
	StatusSkipped     Status = "skipped"
	StatusUnavailable Status = "unavailable"
	StatusUnknown     Status = "unknown"
)

// Module names as they appear in the evidence bundle.
const (
	ModuleSimilarity = "similarity"
	ModuleStructural = "structural"
	ModuleSafety     = "safety"
)

// Default tool names reported when no artefact names one.
const (
	DefaultSimilarityTool = "sourmash"
	DefaultStructuralTool = "foldseek"
	DefaultSafetyTool     = "abricate"
)

const (
	reasonDisabled    = "module disabled"
	reasonUnavailable = "one or more feature artefacts unavailable"
)

// Record is the per-module entry of the evidence bundle.
type Record struct {
	Status      Status  `json:"status"`
	Tool        string  `json:"tool"`
	ToolVersion *string `json:"tool_version"`
	Reason      *string `json:"reason"`
}

// Input collects what the inferencer looks at for one module.
type Input struct {
	Enabled     bool
	TestMode    bool
	DefaultTool string
	Samples     []feature.Provenance
}

// #endregion types

// #region infer
// Infer decides a module's status from its toggle, test mode and a small sample
// of produced artefacts. It never fails: missing information degrades to unknown.
func Infer(in Input) Record {
	if !in.Enabled {
		return Record{Status: StatusSkipped, Tool: in.DefaultTool, Reason: strPtr(reasonDisabled)}
	}
	if in.TestMode {
		return Record{Status: StatusMocked, Tool: feature.MockTool}
	}

	var statuses []feature.Status
	for _, s := range in.Samples {
		if s.Status != "" {
			statuses = append(statuses, s.Status)
		}
	}
	if len(statuses) == 0 {
		return Record{Status: StatusUnknown, Tool: in.DefaultTool}
	}

	allOK := true
	for _, s := range statuses {
		if s == feature.StatusUnavailable || s == feature.StatusError {
			return Record{Status: StatusUnavailable, Tool: in.DefaultTool, Reason: strPtr(reasonUnavailable)}
		}
		if s != feature.StatusOK {
			allOK = false
		}
	}
	if allOK {
		first := in.Samples[0]
		tool := first.Tool
		if tool == "" {
			tool = in.DefaultTool
		}
		return Record{Status: StatusOK, Tool: tool, ToolVersion: first.ToolVersion}
	}
	return Record{Status: StatusUnknown, Tool: in.DefaultTool}
}

// #endregion infer

// #region samples
// Sample extracts the provenance block of a feature, if present.
func Sample[T any](ev feature.Evidence[T], prov func(T) feature.Provenance) []feature.Provenance {
	v, ok := ev.Get()
	if !ok {
		return nil
	}
	return []feature.Provenance{prov(v)}
}

// SampleSet builds the per-module samples from the first phage's evidence.
func SampleSet(set feature.Set) map[string][]feature.Provenance {
	return map[string][]feature.Provenance{
		ModuleSimilarity: Sample(set.Similarity, func(s feature.Similarity) feature.Provenance { return s.Provenance }),
		ModuleStructural: Sample(set.Structural, func(s feature.Structural) feature.Provenance { return s.Provenance }),
		ModuleSafety:     Sample(set.Safety, func(s feature.Safety) feature.Provenance { return s.Provenance }),
	}
}

// #endregion samples

func strPtr(s string) *string { return &s }
