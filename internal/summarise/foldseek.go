// Package summarise turns raw tool outputs already on disk (Foldseek hit
// tables, Abricate reports, GFF annotations, sourmash compare matrices) into
// the per-module feature documents the assembly reads.
package summarise

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/phagepick/decision-bundle/internal/feature"
)

// Tool names stamped on produced features.
const (
	FoldseekTool = "foldseek"
	SafetyTool   = "abricate/prokka"
	SourmashTool = "sourmash"
)

// unsortedEvalue ranks hits with an unparseable e-value last.
const unsortedEvalue = 1e9

// #region parse
// ParseHits reads a Foldseek hit table: query, target, evalue, bitscore and
// optional qcov, tcov columns. Comment lines, blank lines and rows with fewer
// than four columns are skipped.
func ParseHits(r io.Reader) ([]feature.Hit, error) {
	var hits []feature.Hit
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}
		h := feature.Hit{
			Query:    parts[0],
			Target:   parts[1],
			Evalue:   parseFloat(parts[2]),
			Bitscore: parseFloat(parts[3]),
		}
		if len(parts) > 4 {
			h.Qcov = parseFloat(parts[4])
		}
		if len(parts) > 5 {
			h.Tcov = parseFloat(parts[5])
		}
		hits = append(hits, h)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read hits: %w", err)
	}
	return hits, nil
}

// InferPhageID extracts the phage id from a target such as "P001__prot12",
// "P001|prot12" or "P001 description".
func InferPhageID(target string) string {
	for _, sep := range []string{"__", "|"} {
		if before, _, ok := strings.Cut(target, sep); ok {
			return before
		}
	}
	if f := strings.Fields(target); len(f) > 0 {
		return f[0]
	}
	return target
}

// #endregion parse

// #region summarise
// Structural summarises hits into one structural feature per requested phage.
// Phages without hits get hit_count 0 and null statistics.
func Structural(hostID string, phageIDs []string, hits []feature.Hit, toolVersion *string) []feature.Structural {
	grouped := make(map[string][]feature.Hit)
	for _, h := range hits {
		pid := InferPhageID(h.Target)
		grouped[pid] = append(grouped[pid], h)
	}

	out := make([]feature.Structural, 0, len(phageIDs))
	for _, pid := range phageIDs {
		rows := grouped[pid]
		s := feature.Structural{
			HostID:       hostID,
			PhageID:      pid,
			HitCount:     len(rows),
			BestEvalue:   reduce(rows, func(h feature.Hit) feature.Float { return h.Evalue }, math.Min),
			BestBitscore: reduce(rows, func(h feature.Hit) feature.Float { return h.Bitscore }, math.Max),
			QcovMean:     mean(rows, func(h feature.Hit) feature.Float { return h.Qcov }),
			TcovMean:     mean(rows, func(h feature.Hit) feature.Float { return h.Tcov }),
			TopTargets:   topTargets(rows),
			Provenance:   feature.Provenance{Tool: FoldseekTool, ToolVersion: toolVersion, Status: feature.StatusOK},
		}
		out = append(out, s)
	}
	return out
}

// UnavailableStructural marks every phage's structural feature unavailable.
func UnavailableStructural(hostID string, phageIDs []string, reason string, toolVersion *string) []feature.Structural {
	out := make([]feature.Structural, 0, len(phageIDs))
	for _, pid := range phageIDs {
		out = append(out, feature.Structural{
			HostID:     hostID,
			PhageID:    pid,
			TopTargets: []feature.Hit{},
			Provenance: feature.Provenance{
				Tool:        FoldseekTool,
				ToolVersion: toolVersion,
				Status:      feature.StatusUnavailable,
				Reason:      &reason,
			},
		})
	}
	return out
}

// StructuralFromFile summarises a hit table on disk. A missing table yields
// unavailable features rather than an error.
func StructuralFromFile(hostID string, phageIDs []string, path string, toolVersion *string) ([]feature.Structural, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return UnavailableStructural(hostID, phageIDs, "missing hits file: "+path, toolVersion), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open hits %s: %w", path, err)
	}
	defer f.Close()
	hits, err := ParseHits(f)
	if err != nil {
		return nil, fmt.Errorf("hits %s: %w", path, err)
	}
	return Structural(hostID, phageIDs, hits, toolVersion), nil
}

func topTargets(rows []feature.Hit) []feature.Hit {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b feature.Hit) int {
		return cmp.Compare(sortKey(a.Evalue), sortKey(b.Evalue))
	})
	if sorted == nil {
		return []feature.Hit{}
	}
	return sorted[:min(len(sorted), feature.MaxTopTargets)]
}

func sortKey(f feature.Float) float64 {
	if v, ok := f.Get(); ok {
		return v
	}
	return unsortedEvalue
}

// #endregion summarise

// #region helpers
func parseFloat(s string) feature.Float {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return feature.Null()
	}
	return feature.Num(v)
}

func reduce(rows []feature.Hit, get func(feature.Hit) feature.Float, pick func(a, b float64) float64) feature.Float {
	out := feature.Null()
	for _, r := range rows {
		v, ok := get(r).Get()
		if !ok {
			continue
		}
		if cur, ok := out.Get(); ok {
			v = pick(cur, v)
		}
		out = feature.Num(v)
	}
	return out
}

func mean(rows []feature.Hit, get func(feature.Hit) feature.Float) feature.Float {
	var sum float64
	var n int
	for _, r := range rows {
		if v, ok := get(r).Get(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return feature.Null()
	}
	return feature.Num(sum / float64(n))
}

// #endregion helpers
