package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phagepick/decision-bundle/internal/assemble"
	"github.com/phagepick/decision-bundle/internal/ledger"
	"github.com/phagepick/decision-bundle/internal/metrics"
)

// #region assemble
func (a *app) assembleCmd() *cobra.Command {
	var (
		opts        assemble.Options
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Rank phages against a host and write the decision bundle",
		Long: `Scores every phage of the phage manifest against the host from the
feature artefacts on disk, then writes the ranking CSV and the evidence bundle.
Nothing is written when the host is missing from the host manifest.

Example:
  phagebundle assemble --host-id PAO1 --config run.yaml \
    --phage-manifest phages.tsv --host-manifest hosts.tsv \
    --structural-dir features/structural --safety-dir features/safety \
    --out-ranking out/ranking.csv --out-evidence out/evidence_bundle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := a.v.GetString("ledger"); path != "" {
				store, err := ledger.NewStore(path)
				if err != nil {
					a.log.Warn("run ledger disabled", zap.String("ledger", path), zap.Error(err))
				} else {
					defer store.Close()
					opts.Observers = append(opts.Observers, store)
				}
			}
			if metricsPath != "" {
				opts.Observers = append(opts.Observers, metrics.NewRecorder(metricsPath))
			}
			opts.Now = a.now
			opts.Logger = a.log

			res, err := assemble.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printf(out, "Wrote %s (%d candidates)\n", res.RankingPath, len(res.Candidates))
			printf(out, "Wrote %s (shortlist %d)\n", res.EvidencePath, len(res.Bundle.Shortlist))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.HostID, "host-id", "", "host to rank phages against")
	f.StringVar(&opts.ConfigPath, "config", "", "run configuration YAML")
	f.StringVar(&opts.PhageManifest, "phage-manifest", "", "phage manifest TSV")
	f.StringVar(&opts.HostManifest, "host-manifest", "", "host manifest TSV")
	f.StringVar(&opts.SimilarityDir, "similarity-dir", "", "similarity feature directory")
	f.StringVar(&opts.StructuralDir, "structural-dir", "", "structural feature directory")
	f.StringVar(&opts.SafetyDir, "safety-dir", "", "safety feature directory")
	f.StringVar(&opts.RankingOut, "out-ranking", "", "ranking CSV output path")
	f.StringVar(&opts.EvidenceOut, "out-evidence", "", "evidence bundle output path")
	f.StringVar(&opts.PipelineVersion, "pipeline-version", assemble.DefaultPipelineVersion, "version stamped on the bundle")
	f.IntVar(&opts.Workers, "workers", 0, "scoring goroutines (0 = NumCPU)")
	f.StringVar(&metricsPath, "metrics-textfile", "", "write run metrics in node_exporter textfile format")
	markRequired(cmd, "host-id", "config", "phage-manifest", "host-manifest", "out-ranking", "out-evidence")
	return cmd
}

// #endregion assemble
