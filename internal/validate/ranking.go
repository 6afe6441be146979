package validate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/phagepick/decision-bundle/internal/bundle"
)

// CheckRanking verifies the column contract of a ranking table. Every
// violation is returned, including an unreadable file.
func CheckRanking(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("ranking.csv could not be read: %v", err)}
	}
	defer f.Close()
	return checkRanking(f)
}

func checkRanking(r io.Reader) []string {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []string{"ranking.csv is empty"}
	}
	if err != nil {
		return []string{fmt.Sprintf("ranking.csv header could not be parsed: %v", err)}
	}

	want := bundle.RankingColumns
	var problems []string
	if !slices.Equal(header, want) {
		problems = append(problems, fmt.Sprintf("ranking.csv header mismatch. Expected %q but got %q", want, header))
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			// The reader has moved past the bad record; keep checking.
			problems = append(problems, fmt.Sprintf("ranking.csv row %d: %v", pe.StartLine, pe.Err))
			continue
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("ranking.csv could not be read: %v", err))
			break
		}
		row, _ := cr.FieldPos(0)
		if len(rec) != len(want) {
			problems = append(problems, fmt.Sprintf("ranking.csv row %d has %d columns (expected %d)", row, len(rec), len(want)))
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(rec[2])); err != nil {
			problems = append(problems, fmt.Sprintf("ranking.csv row %d: rank is not an int: %s", row, rec[2]))
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64); err != nil {
			problems = append(problems, fmt.Sprintf("ranking.csv row %d: confidence_score is not a float: %s", row, rec[3]))
		}
	}
	return problems
}
