// Package assemble runs one decision-bundle assembly: it scores every phage
// in the manifest against a host, ranks the candidates and publishes the
// ranking table and evidence bundle together.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/phagepick/decision-bundle/internal/bundle"
	"github.com/phagepick/decision-bundle/internal/config"
	"github.com/phagepick/decision-bundle/internal/feature"
	"github.com/phagepick/decision-bundle/internal/manifest"
	"github.com/phagepick/decision-bundle/internal/rank"
	"github.com/phagepick/decision-bundle/internal/status"
)

// DefaultPipelineVersion is stamped on bundles when no version is given.
const DefaultPipelineVersion = "0.1.0"

// MockSuffix is appended to the pipeline version in test mode.
const MockSuffix = "-mock"

// ErrHostNotFound is returned when the host is missing from the host manifest.
var ErrHostNotFound = errors.New("host not found")

// #region types
// Options describes one assembly run.
type Options struct {
	HostID          string
	ConfigPath      string
	PhageManifest   string
	HostManifest    string
	SimilarityDir   string
	StructuralDir   string
	SafetyDir       string
	RankingOut      string
	EvidenceOut     string
	PipelineVersion string
	Workers         int

	// Now defaults to time.Now.
	Now func() time.Time
	// Observers are notified after both artifacts were published.
	Observers []Observer
	Logger    *zap.Logger
}

// Result is what a successful run produced.
type Result struct {
	Bundle       *bundle.Bundle
	Candidates   []rank.Candidate
	RankingPath  string
	EvidencePath string
	Started      time.Time
	Duration     time.Duration
}

// Observer receives finished runs. Observer failures are logged and never
// fail a run whose artifacts are already on disk.
type Observer interface {
	Observe(ctx context.Context, res *Result) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, res *Result) error

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, res *Result) error { return f(ctx, res) }

// #endregion types

// #region run
// Run assembles the decision bundle for one host. Preconditions (config,
// manifests, host membership) are checked before anything is written.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	topN, err := cfg.TopN()
	if err != nil {
		return nil, err
	}

	phageIDs, err := manifest.PhageIDs(opts.PhageManifest)
	if err != nil {
		return nil, err
	}
	found, err := manifest.ContainsHost(opts.HostManifest, opts.HostID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: host_id %s not found in %s", ErrHostNotFound, opts.HostID, opts.HostManifest)
	}

	loader := feature.Loader{
		SimilarityDir: opts.SimilarityDir,
		StructuralDir: opts.StructuralDir,
		SafetyDir:     opts.SafetyDir,
	}
	cands, err := rank.Build(ctx, opts.HostID, phageIDs, loader, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	log.Debug("scored candidates", zap.String("host_id", opts.HostID), zap.Int("candidates", len(cands)))

	b, err := buildBundle(opts, cfg, phageIDs, loader, started)
	if err != nil {
		return nil, err
	}
	b.Shortlist = bundle.Shortlist(cands, topN)

	rankingData, err := bundle.RankingBytes(cands)
	if err != nil {
		return nil, err
	}
	evidenceData, err := bundle.EvidenceBytes(b)
	if err != nil {
		return nil, err
	}
	if err := bundle.WriteAll(
		bundle.Artifact{Path: opts.RankingOut, Data: rankingData},
		bundle.Artifact{Path: opts.EvidenceOut, Data: evidenceData},
	); err != nil {
		return nil, err
	}

	res := &Result{
		Bundle:       b,
		Candidates:   cands,
		RankingPath:  opts.RankingOut,
		EvidencePath: opts.EvidenceOut,
		Started:      started,
		Duration:     now().Sub(started),
	}
	log.Info("assembled decision bundle",
		zap.String("host_id", b.HostID),
		zap.String("run_id", b.RunID),
		zap.String("pipeline_version", b.PipelineVersion),
		zap.Int("candidates", len(cands)),
		zap.Int("shortlist", len(b.Shortlist)),
		zap.String("ranking", opts.RankingOut),
		zap.String("evidence", opts.EvidenceOut),
	)

	for _, o := range opts.Observers {
		if err := o.Observe(ctx, res); err != nil {
			log.Warn("run observer failed", zap.String("run_id", b.RunID), zap.Error(err))
		}
	}
	return res, nil
}

// #endregion run

// #region bundle
func buildBundle(opts Options, cfg *config.Config, phageIDs []string, loader feature.Loader, started time.Time) (*bundle.Bundle, error) {
	configSum, err := manifest.SHA256File(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	hashes := make(map[string]string, 2)
	for _, p := range []string{opts.PhageManifest, opts.HostManifest} {
		sum, err := manifest.SHA256File(p)
		if err != nil {
			return nil, err
		}
		hashes[filepath.Base(p)] = sum
	}

	version := opts.PipelineVersion
	if version == "" {
		version = DefaultPipelineVersion
	}
	if cfg.Modules.TestMode {
		version += MockSuffix
	}

	return &bundle.Bundle{
		PipelineVersion: version,
		RunID:           bundle.RunID(started),
		HostID:          opts.HostID,
		Profile:         cfg.Profile,
		TestMode:        cfg.Modules.TestMode,
		ConfigSHA256:    configSum,
		ManifestHashes:  hashes,
		Modules:         Modules(cfg, opts.HostID, phageIDs, loader),
		Params:          cfg.Params,
		Versions:        cfg.Versions,
	}, nil
}

// Modules infers every module's status from the first phage's artefacts.
func Modules(cfg *config.Config, hostID string, phageIDs []string, loader feature.Loader) map[string]status.Record {
	var samples map[string][]feature.Provenance
	if len(phageIDs) > 0 {
		samples = status.SampleSet(loader.Load(hostID, phageIDs[0]))
	}
	m := cfg.Modules
	infer := func(module string, enabled bool, tool string) status.Record {
		return status.Infer(status.Input{
			Enabled:     enabled,
			TestMode:    m.TestMode,
			DefaultTool: tool,
			Samples:     samples[module],
		})
	}
	return map[string]status.Record{
		status.ModuleSimilarity: infer(status.ModuleSimilarity, m.EnableSourmash, status.DefaultSimilarityTool),
		status.ModuleStructural: infer(status.ModuleStructural, m.EnableStructuralPPI, status.DefaultStructuralTool),
		status.ModuleSafety:     infer(status.ModuleSafety, m.EnableSafety, status.DefaultSafetyTool),
	}
}

// #endregion bundle
