package summarise

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/phagepick/decision-bundle/internal/feature"
)

var lysogenyKeywords = []string{"integrase", "site-specific recombinase"}

// #region abricate
// CountAbricateHits counts the data rows of an Abricate report. A missing
// report counts as zero hits.
func CountAbricateHits(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open abricate report: %w", err)
	}
	defer f.Close()
	return countAbricateHits(f)
}

func countAbricateHits(r io.Reader) (int, error) {
	var n int
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "file\t") {
			continue
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read abricate report: %w", err)
	}
	return n, nil
}

// #endregion abricate

// #region gff
// GFFSummary is what the safety module reads from a genome annotation.
type GFFSummary struct {
	TRNACount     int
	IntegraseLike bool
}

// ScanGFF counts tRNA features and looks for integrase-like annotations. A
// missing file returns nil.
func ScanGFF(path string) (*GFFSummary, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open gff: %w", err)
	}
	defer f.Close()
	return scanGFF(f)
}

func scanGFF(r io.Reader) (*GFFSummary, error) {
	var s GFFSummary
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 9 {
			continue
		}
		if strings.EqualFold(parts[2], "trna") {
			s.TRNACount++
		}
		attrs := strings.ToLower(parts[8])
		for _, kw := range lysogenyKeywords {
			if strings.Contains(attrs, kw) {
				s.IntegraseLike = true
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gff: %w", err)
	}
	return &s, nil
}

// #endregion gff

// #region compile
// SafetyInput names the per-phage reports; empty paths are skipped.
type SafetyInput struct {
	PhageID         string
	AbricateTSV     string
	GFF             string
	AbricateVersion *string
}

// Safety compiles the safety feature of one phage. Unreadable reports mark
// the feature unavailable instead of failing.
func Safety(in SafetyInput) feature.Safety {
	s := feature.Safety{
		PhageID:    in.PhageID,
		Flags:      []string{},
		Provenance: feature.Provenance{Tool: SafetyTool, ToolVersion: in.AbricateVersion, Status: feature.StatusOK},
	}

	err := func() error {
		if in.AbricateTSV != "" {
			n, err := CountAbricateHits(in.AbricateTSV)
			if err != nil {
				return err
			}
			s.VFDBHits = n
		}
		if in.GFF != "" {
			g, err := ScanGFF(in.GFF)
			if err != nil {
				return err
			}
			if g != nil {
				s.TRNACount = &g.TRNACount
				s.IntegraseLike = g.IntegraseLike
			}
		}
		return nil
	}()
	if err != nil {
		reason := "safety parsing failed: " + err.Error()
		s.Status = feature.StatusUnavailable
		s.Reason = &reason
	}

	if s.VFDBHits > 0 {
		s.Flags = append(s.Flags, feature.FlagVFDBHit)
	}
	if s.IntegraseLike {
		s.Flags = append(s.Flags, feature.FlagPossibleTemperate)
	}
	return s
}

// #endregion compile
