package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/manifest"
	"github.com/phagepick/decision-bundle/internal/summarise"
)

// #region features
func (a *app) featuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Produce feature artefacts for the assembly",
		Long: `Writes per-module feature documents in the directory layout the assembly
reads: <dir>/<host_id>/<phage_id>.json for similarity and structural features
and <dir>/<phage_id>.json for safety features.`,
	}
	cmd.AddCommand(
		a.featuresMockCmd(),
		a.featuresStructuralCmd(),
		a.featuresSafetyCmd(),
		a.featuresSimilarityCmd(),
	)
	return cmd
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// #endregion features

// #region mock
func (a *app) featuresMockCmd() *cobra.Command {
	var hostID, phageManifest string
	var dirs feature.Loader
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Write deterministic mocked features for every phage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dirs == (feature.Loader{}) {
				return errors.New("at least one of --similarity-dir, --structural-dir, --safety-dir is required")
			}
			ids, err := manifest.PhageIDs(phageManifest)
			if err != nil {
				return err
			}
			var written int
			for _, pid := range ids {
				if dirs.SimilarityDir != "" {
					if err := feature.Write(feature.PairPath(dirs.SimilarityDir, hostID, pid), feature.MockSimilarity(hostID, pid)); err != nil {
						return err
					}
					written++
				}
				if dirs.StructuralDir != "" {
					if err := feature.Write(feature.PairPath(dirs.StructuralDir, hostID, pid), feature.MockStructural(hostID, pid)); err != nil {
						return err
					}
					written++
				}
				if dirs.SafetyDir != "" {
					if err := feature.Write(feature.PhagePath(dirs.SafetyDir, pid), feature.MockSafety(pid)); err != nil {
						return err
					}
					written++
				}
			}
			a.log.Info("wrote mock features", zap.String("host_id", hostID), zap.Int("phages", len(ids)), zap.Int("files", written))
			printf(cmd.OutOrStdout(), "Wrote %d mock feature files for %d phages\n", written, len(ids))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&hostID, "host-id", "", "host the features describe")
	f.StringVar(&phageManifest, "phage-manifest", "", "phage manifest TSV")
	f.StringVar(&dirs.SimilarityDir, "similarity-dir", "", "similarity feature directory")
	f.StringVar(&dirs.StructuralDir, "structural-dir", "", "structural feature directory")
	f.StringVar(&dirs.SafetyDir, "safety-dir", "", "safety feature directory")
	markRequired(cmd, "host-id", "phage-manifest")
	return cmd
}

// #endregion mock

// #region structural
func (a *app) featuresStructuralCmd() *cobra.Command {
	var hostID, phageManifest, hitsPath, outDir, toolVersion string
	cmd := &cobra.Command{
		Use:   "structural",
		Short: "Summarise a Foldseek hit table into structural features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := manifest.PhageIDs(phageManifest)
			if err != nil {
				return err
			}
			feats, err := summarise.StructuralFromFile(hostID, ids, hitsPath, optional(toolVersion))
			if err != nil {
				return err
			}
			var unavailable int
			for _, s := range feats {
				if err := feature.Write(feature.PairPath(outDir, hostID, s.PhageID), s); err != nil {
					return err
				}
				if s.Status == feature.StatusUnavailable {
					unavailable++
				}
			}
			if unavailable > 0 {
				a.log.Warn("structural features unavailable", zap.String("hits", hitsPath), zap.Int("phages", unavailable))
			}
			printf(cmd.OutOrStdout(), "Wrote %d structural features to %s\n", len(feats), outDir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&hostID, "host-id", "", "host the hits were searched from")
	f.StringVar(&phageManifest, "phage-manifest", "", "phage manifest TSV")
	f.StringVar(&hitsPath, "hits-tsv", "", "Foldseek hit table")
	f.StringVar(&outDir, "out-dir", "", "structural feature directory")
	f.StringVar(&toolVersion, "tool-version", "", "Foldseek version to record")
	markRequired(cmd, "host-id", "phage-manifest", "hits-tsv", "out-dir")
	return cmd
}

// #endregion structural

// #region safety
func (a *app) featuresSafetyCmd() *cobra.Command {
	var in summarise.SafetyInput
	var outDir, toolVersion string
	cmd := &cobra.Command{
		Use:   "safety",
		Short: "Compile an Abricate report and GFF annotation into a safety feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.AbricateVersion = optional(toolVersion)
			s := summarise.Safety(in)
			path := feature.PhagePath(outDir, in.PhageID)
			if err := feature.Write(path, s); err != nil {
				return err
			}
			if s.Status == feature.StatusUnavailable {
				a.log.Warn("safety feature unavailable", zap.String("phage_id", in.PhageID), zap.String("reason", *s.Reason))
			}
			printf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.PhageID, "phage-id", "", "phage the reports describe")
	f.StringVar(&in.AbricateTSV, "abricate-tsv", "", "Abricate VFDB report")
	f.StringVar(&in.GFF, "gff", "", "genome annotation GFF3")
	f.StringVar(&outDir, "out-dir", "", "safety feature directory")
	f.StringVar(&toolVersion, "tool-version", "", "Abricate version to record")
	markRequired(cmd, "phage-id", "out-dir")
	return cmd
}

// #endregion safety

// #region similarity
func (a *app) featuresSimilarityCmd() *cobra.Command {
	var hostID, phageID, csvPath, outDir, toolVersion string
	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Read a sourmash containment matrix into a similarity feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := summarise.Similarity(hostID, phageID, csvPath, optional(toolVersion))
			path := feature.PairPath(outDir, hostID, phageID)
			if err := feature.Write(path, s); err != nil {
				return err
			}
			if s.Status == feature.StatusUnavailable {
				a.log.Warn("similarity feature unavailable", zap.String("phage_id", phageID), zap.String("reason", *s.Reason))
			}
			printf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&hostID, "host-id", "", "host genome of the comparison")
	f.StringVar(&phageID, "phage-id", "", "phage genome of the comparison")
	f.StringVar(&csvPath, "compare-csv", "", "sourmash compare --containment --csv output")
	f.StringVar(&outDir, "out-dir", "", "similarity feature directory")
	f.StringVar(&toolVersion, "tool-version", "", "sourmash version to record")
	markRequired(cmd, "host-id", "phage-id", "compare-csv", "out-dir")
	return cmd
}

// #endregion similarity
