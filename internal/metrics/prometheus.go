// Package metrics exports assembly runs as Prometheus metrics in the
// node_exporter textfile format.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phagepick/decision-bundle/internal/assemble"
	"github.com/phagepick/decision-bundle/internal/status"
)

var moduleStatuses = []status.Status{
	status.StatusOK,
	status.StatusMocked,
	status.StatusSkipped,
	status.StatusUnavailable,
	status.StatusUnknown,
}

// Recorder owns a private registry so repeated runs in one process never
// collide with the default one.
type Recorder struct {
	Registry *prometheus.Registry
	// Path is the textfile written after each observed run; empty disables it.
	Path string

	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	Candidates      prometheus.Gauge
	Shortlisted     prometheus.Gauge
	ConfidenceScore prometheus.Histogram
	SafetyFlags     *prometheus.CounterVec
	ModuleStatus    *prometheus.GaugeVec
	LastRun         prometheus.Gauge
}

// NewRecorder builds and registers the assembly metrics.
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		Path:     path,

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phagebundle_runs_total",
				Help: "Assembly runs completed",
			},
			[]string{"test_mode"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "phagebundle_run_duration_seconds",
				Help:    "Wall time of an assembly run in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		Candidates: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "phagebundle_candidates",
				Help: "Candidates ranked in the last run",
			},
		),
		Shortlisted: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "phagebundle_shortlist_size",
				Help: "Candidates shortlisted in the last run",
			},
		),
		ConfidenceScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "phagebundle_confidence_score",
				Help:    "Candidate confidence scores",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
		),
		SafetyFlags: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phagebundle_safety_flags_total",
				Help: "Safety flags raised on ranked candidates",
			},
			[]string{"flag"},
		),
		ModuleStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "phagebundle_module_status",
				Help: "1 for the inferred status of each evidence module in the last run",
			},
			[]string{"module", "status"},
		),
		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "phagebundle_last_run_timestamp_seconds",
				Help: "Start time of the last run as a unix timestamp",
			},
		),
	}
	r.Registry.MustRegister(
		r.RunsTotal,
		r.RunDuration,
		r.Candidates,
		r.Shortlisted,
		r.ConfidenceScore,
		r.SafetyFlags,
		r.ModuleStatus,
		r.LastRun,
	)
	return r
}

// Record updates every metric from a finished run.
func (r *Recorder) Record(res *assemble.Result) {
	b := res.Bundle
	r.RunsTotal.WithLabelValues(fmt.Sprint(b.TestMode)).Inc()
	r.RunDuration.Observe(res.Duration.Seconds())
	r.Candidates.Set(float64(len(res.Candidates)))
	r.Shortlisted.Set(float64(len(b.Shortlist)))
	r.LastRun.Set(float64(res.Started.Unix()))

	for _, c := range res.Candidates {
		r.ConfidenceScore.Observe(c.Confidence())
		for _, f := range c.SafetyFlags {
			r.SafetyFlags.WithLabelValues(f).Inc()
		}
	}

	for module, rec := range b.Modules {
		for _, s := range moduleStatuses {
			v := 0.0
			if rec.Status == s {
				v = 1
			}
			r.ModuleStatus.WithLabelValues(module, string(s)).Set(v)
		}
	}
}

// Observe records the run and refreshes the textfile. It satisfies
// assemble.Observer.
func (r *Recorder) Observe(_ context.Context, res *assemble.Result) error {
	r.Record(res)
	if r.Path == "" {
		return nil
	}
	return r.WriteTextfile(r.Path)
}

// WriteTextfile writes the registry in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
