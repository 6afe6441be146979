package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/phagepick/decision-bundle/internal/ledger"
)

// #region inspect
func (a *app) inspectCmd() *cobra.Command {
	var (
		last    int
		runID   string
		hostID  string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse assembly runs recorded in the run ledger",
		Long: `Lists the most recent assembly runs recorded in the ledger, or shows one
run with its full candidate log.

Examples:
  phagebundle inspect --ledger runs.db --last 5
  phagebundle inspect --ledger runs.db --run 3f2c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.v.GetString("ledger")
			if path == "" {
				return errors.New("inspect needs --ledger (or PHAGEBUNDLE_LEDGER)")
			}
			store, err := ledger.NewStore(path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				detail, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(out, detail)
				}
				printDetail(out, detail)
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), hostID, last)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no runs found")
				return nil
			}
			if jsonOut {
				return printJSON(out, runs)
			}
			printRunTable(out, runs)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&last, "last", 20, "show N most recent runs")
	f.StringVar(&runID, "run", "", "show one run by record id")
	f.StringVar(&hostID, "host", "", "only list runs for this host")
	f.BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion inspect

// #region list-mode
func printRunTable(w io.Writer, runs []ledger.Run) {
	printf(w, "%-12s  %-20s  %-12s  %-12s  %5s  %5s  %8s\n",
		"Record", "Run ID", "Host", "Version", "Cands", "Short", "Duration")
	printf(w, "%-12s+-%-20s+-%-12s+-%-12s+-%5s+-%5s+-%8s\n",
		"------------", "--------------------", "------------", "------------", "-----", "-----", "--------")
	for _, r := range runs {
		printf(w, "%-12s  %-20s  %-12s  %-12s  %5d  %5d  %8s\n",
			shortID(r.RecordID), r.RunID, r.HostID, r.PipelineVersion,
			r.CandidateCount, r.Shortlisted, r.Duration.String())
	}
}

// #endregion list-mode

// #region detail-mode
func printDetail(w io.Writer, d ledger.RunDetail) {
	printf(w, "Record:    %s\n", d.RecordID)
	printf(w, "Run ID:    %s\n", d.RunID)
	printf(w, "Host:      %s\n", d.HostID)
	printf(w, "Version:   %s (profile %s, test_mode %t)\n", d.PipelineVersion, d.Profile, d.TestMode)
	printf(w, "Config:    %s\n", d.ConfigSHA256)
	printf(w, "Ranking:   %s\n", d.RankingPath)
	printf(w, "Evidence:  %s\n", d.EvidencePath)
	printf(w, "Duration:  %s\n", d.Duration)

	printf(w, "\nModules:\n")
	names := make([]string, 0, len(d.Modules))
	for name := range d.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := d.Modules[name]
		printf(w, "  %-12s %-12s %s\n", name, m.Status, deref(m.Reason))
	}

	printf(w, "\n%4s  %-16s  %10s  %-20s  %s\n", "Rank", "Phage", "Confidence", "Reason", "Flags")
	printf(w, "%4s+-%-16s+-%10s+-%-20s+-%s\n", "----", "----------------", "----------", "--------------------", "--------")
	for _, c := range d.Candidates {
		flags := c.SafetyFlags
		if flags == "" {
			flags = "—"
		}
		printf(w, "%4d  %-16s  %10.4f  %-20s  %s\n", c.Rank, c.PhageID, c.Confidence, c.PrimaryReason, flags)
	}
}

// #endregion detail-mode

// #region helpers
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// #endregion helpers
