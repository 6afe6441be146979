package summarise

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/phagepick/decision-bundle/internal/feature"
)

// ContainmentMetric names similarity values read from sourmash.
const ContainmentMetric = "containment"

// ParseContainment reads the 2×2 matrix written by `sourmash compare
// --containment --csv` and returns its largest value.
func ParseContainment(r io.Reader) (float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read containment matrix: %w", err)
	}
	if len(recs) < 3 {
		return 0, errors.New("unexpected sourmash CSV format")
	}

	var best float64
	var found bool
	for _, row := range recs[1:3] {
		for _, cell := range row[min(1, len(row)):] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				continue
			}
			if !found || v > best {
				best, found = v, true
			}
		}
	}
	return best, nil
}

// Similarity builds the similarity feature of one pair from a compare CSV. A
// missing or malformed matrix yields an unavailable feature with value 0.
func Similarity(hostID, phageID, csvPath string, toolVersion *string) feature.Similarity {
	s := feature.Similarity{
		HostID:     hostID,
		PhageID:    phageID,
		Metric:     ContainmentMetric,
		Value:      feature.Num(0),
		Provenance: feature.Provenance{Tool: SourmashTool, ToolVersion: toolVersion, Status: feature.StatusOK},
	}
	v, err := containmentFromFile(csvPath)
	if err != nil {
		reason := "sourmash compare failed: " + err.Error()
		s.Status = feature.StatusUnavailable
		s.Reason = &reason
		return s
	}
	s.Value = feature.Num(v)
	return s
}

func containmentFromFile(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ParseContainment(f)
}
