package bundle

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phagepick/decision-bundle/internal/rank"
)

// EncodeRanking writes every candidate as one ranking row.
func EncodeRanking(w io.Writer, cands []rank.Candidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RankingColumns); err != nil {
		return fmt.Errorf("write ranking header: %w", err)
	}
	for _, c := range cands {
		row := []string{
			c.HostID,
			c.PhageID,
			strconv.Itoa(c.Rank),
			strconv.FormatFloat(c.Confidence(), 'f', 4, 64),
			string(c.Score.Reason),
			FormatFlags(c.SafetyFlags),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write ranking row %s: %w", c.PhageID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RankingBytes renders the ranking table in memory.
func RankingBytes(cands []rank.Candidate) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeRanking(&buf, cands); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatFlags renders the safety_flags cell.
func FormatFlags(flags []string) string {
	if len(flags) == 0 {
		return NoFlags
	}
	return strings.Join(flags, FlagSeparator)
}
