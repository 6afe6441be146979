package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/rank"
)

// RunIDLayout is ISO-8601 UTC with second precision and a Z suffix.
const RunIDLayout = "2006-01-02T15:04:05Z"

// RunID formats t as a run identifier.
func RunID(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(RunIDLayout)
}

// Shortlist projects the first topN ranked candidates into bundle entries.
func Shortlist(cands []rank.Candidate, topN int) []Entry {
	top := rank.Top(cands, topN)
	out := make([]Entry, 0, len(top))
	for _, c := range top {
		flags := c.SafetyFlags
		if flags == nil {
			flags = []string{}
		}
		out = append(out, Entry{
			HostID:          c.HostID,
			PhageID:         c.PhageID,
			Rank:            c.Rank,
			ConfidenceScore: Round4(c.Confidence()),
			PrimaryReason:   string(c.Score.Reason),
			SafetyFlags:     flags,
			Evidence:        Flatten(c.Evidence),
			NextBestAction:  c.NextBestAction,
		})
	}
	return out
}

// Flatten reduces raw features to the shortlist evidence view.
func Flatten(set feature.Set) Evidence {
	var ev Evidence
	if s, ok := set.Similarity.Get(); ok {
		ev.Similarity = &SimilaritySummary{
			Metric: s.Metric,
			Value:  s.Value,
			Status: s.Status,
			Tool:   s.Tool,
		}
	}
	if s, ok := set.Structural.Get(); ok {
		ev.Structural = &StructuralSummary{
			HitCount:     s.HitCount,
			BestEvalue:   s.BestEvalue,
			BestBitscore: s.BestBitscore,
			QcovMean:     s.QcovMean,
			TcovMean:     s.TcovMean,
			Status:       s.Status,
			Tool:         s.Tool,
		}
	}
	if s, ok := set.Safety.Get(); ok {
		flags := s.Flags
		if flags == nil {
			flags = []string{}
		}
		ev.Safety = &SafetySummary{
			VFDBHits:      s.VFDBHits,
			IntegraseLike: s.IntegraseLike,
			TRNACount:     s.TRNACount,
			Flags:         flags,
			Status:        s.Status,
			Tool:          s.Tool,
		}
	}
	return ev
}

// Round4 rounds to four decimal places.
func Round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// EncodeEvidence writes the bundle as indented JSON.
func EncodeEvidence(w io.Writer, b *Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode evidence bundle: %w", err)
	}
	return nil
}

// EvidenceBytes renders the bundle in memory.
func EvidenceBytes(b *Bundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode evidence bundle: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadEvidence loads a bundle written by EncodeEvidence.
func ReadEvidence(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse evidence bundle %s: %w", path, err)
	}
	return &b, nil
}
