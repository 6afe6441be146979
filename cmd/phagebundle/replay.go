package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/manifest"
	"github.com/phagepick/decision-bundle/internal/replay"
)

// #region replay
func (a *app) replayCmd() *cobra.Command {
	var (
		fixturePath string
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a golden ranking fixture through the scorer",
		Long: `Ranks the inline feature documents of a fixture and compares rank,
confidence score, primary reason and next best action with the expected
results. Exits 2 when any expectation drifted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			got, err := replay.Replay(cmd.Context(), f, workers)
			if err != nil {
				return err
			}
			sum := replay.Compare(f, got)

			printReplay(cmd.OutOrStdout(), f, got, sum)
			if !sum.Passed() {
				a.log.Debug("fixture drifted", zap.String("fixture", fixturePath), zap.Int("mismatches", len(sum.Mismatches)))
				return &exitError{code: exitInvalid, err: fmt.Errorf("%d of %d expectations mismatched", len(sum.Mismatches), sum.Checked)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "fixture JSON")
	cmd.Flags().IntVar(&workers, "workers", 0, "scoring goroutines (0 = NumCPU)")
	markRequired(cmd, "fixture")

	cmd.AddCommand(a.replayExportCmd())
	return cmd
}

func printReplay(w io.Writer, f *replay.Fixture, got []replay.ReplayResult, sum replay.ReplaySummary) {
	printf(w, "Fixture: %s (host %s)\n\n", f.Description, f.HostID)
	printf(w, "%4s  %-16s  %10s  %-20s  %s\n", "Rank", "Phage", "Confidence", "Reason", "Flags")
	printf(w, "%4s+-%-16s+-%10s+-%-20s+-%s\n", "----", "----------------", "----------", "--------------------", "--------")
	for _, r := range got {
		flags := strings.Join(r.SafetyFlags, ";")
		if flags == "" {
			flags = "—"
		}
		printf(w, "%4d  %-16s  %10.4f  %-20s  %s\n", r.Rank, r.PhageID, r.ConfidenceScore, r.PrimaryReason, flags)
	}

	printf(w, "\nChecked %d expectations: %d matched, %d mismatches\n", sum.Checked, sum.Matched, len(sum.Mismatches))
	for _, m := range sum.Mismatches {
		printf(w, "  MISMATCH %s\n", m)
	}
	if sum.Passed() {
		printf(w, "PASS\n")
	} else {
		printf(w, "FAIL\n")
	}
}

// #endregion replay

// #region export
func (a *app) replayExportCmd() *cobra.Command {
	var (
		hostID, phageManifest, outPath, description string
		loader                                      feature.Loader
		workers                                     int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Capture feature directories and their current ranking as a fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := manifest.PhageIDs(phageManifest)
			if err != nil {
				return err
			}
			if description == "" {
				description = fmt.Sprintf("%s against %d phages", hostID, len(ids))
			}
			f, err := replay.Export(cmd.Context(), description, hostID, ids, loader, workers)
			if err != nil {
				return err
			}
			if err := f.Save(outPath); err != nil {
				return err
			}
			a.log.Info("exported fixture", zap.String("fixture", outPath), zap.Int("candidates", len(f.Candidates)))
			printf(cmd.OutOrStdout(), "Wrote %s (%d candidates)\n", outPath, len(f.Candidates))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&hostID, "host-id", "", "host the fixture ranks against")
	fl.StringVar(&phageManifest, "phage-manifest", "", "phage manifest TSV")
	fl.StringVar(&loader.SimilarityDir, "similarity-dir", "", "similarity feature directory")
	fl.StringVar(&loader.StructuralDir, "structural-dir", "", "structural feature directory")
	fl.StringVar(&loader.SafetyDir, "safety-dir", "", "safety feature directory")
	fl.StringVar(&outPath, "out", "", "fixture JSON output path")
	fl.StringVar(&description, "description", "", "fixture description")
	fl.IntVar(&workers, "workers", 0, "scoring goroutines (0 = NumCPU)")
	markRequired(cmd, "host-id", "phage-manifest", "out")
	return cmd
}

// #endregion export
