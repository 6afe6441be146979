// Package validate checks a ranking table and an evidence bundle against
// their published contracts. Both checks always run and every violation is
// reported.
package validate

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalid marks a report that contains at least one violation.
var ErrInvalid = errors.New("validation failed")

// Report is the combined outcome of both checks.
type Report struct {
	Ranking  []string
	Evidence []string
}

// Errors returns every violation, ranking first.
func (r *Report) Errors() []string {
	out := make([]string, 0, len(r.Ranking)+len(r.Evidence))
	out = append(out, r.Ranking...)
	return append(out, r.Evidence...)
}

// OK reports whether no violation was found.
func (r *Report) OK() bool {
	return len(r.Ranking) == 0 && len(r.Evidence) == 0
}

// Err returns nil for a clean report, else an error wrapping ErrInvalid.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d error(s)", ErrInvalid, len(r.Ranking)+len(r.Evidence))
}

// Write prints the report in the validator's text format.
func (r *Report) Write(w io.Writer) error {
	if r.OK() {
		_, err := fmt.Fprintln(w, "VALIDATION OK")
		return err
	}
	if _, err := fmt.Fprintln(w, "VALIDATION FAILED"); err != nil {
		return err
	}
	for _, e := range r.Errors() {
		if _, err := fmt.Fprintf(w, "- %s\n", e); err != nil {
			return err
		}
	}
	return nil
}

// Run checks both artifacts. An unreadable input is reported as a violation
// and never stops the other check.
func Run(rankingPath, evidencePath string, schema *Schema) *Report {
	return &Report{
		Ranking:  CheckRanking(rankingPath),
		Evidence: schema.CheckEvidence(evidencePath),
	}
}
