// SPDX-License-Identifier: MPL-2.0

// Package metrics records what an lbrecipe invocation did in Prometheus form and
// writes it out in the node_exporter textfile format, so CI hosts can scrape build
// timings without lbrecipe running a server.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns an isolated registry for one invocation.
type Recorder struct {
	reg *prometheus.Registry

	// stepsTotal counts pipeline steps, partitioned by step and outcome.
	stepsTotal *prometheus.CounterVec

	// stepDurationSeconds records wall-clock time per step.
	stepDurationSeconds *prometheus.HistogramVec

	// versionInfo is 1 for the resolved version; the labels carry the data.
	versionInfo *prometheus.GaugeVec

	// requirements is the number of requirements emitted by the last resolution.
	requirements prometheus.Gauge
}

// New creates a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lbrecipe",
			Name:      "steps_total",
			Help:      "Pipeline steps executed, partitioned by step and outcome.",
		}, []string{"step", "outcome"}),

		stepDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lbrecipe",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of each pipeline step.",
			Buckets:   []float64{0.01, 0.1, 1, 10, 60, 300, 900},
		}, []string{"step"}),

		versionInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lbrecipe",
			Name:      "version_info",
			Help:      "Resolved package version; value is always 1.",
		}, []string{"version", "fallback_reason"}),

		requirements: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lbrecipe",
			Name:      "requirements",
			Help:      "Number of upstream requirements emitted.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Observe records one completed step.
func (r *Recorder) Observe(step string, d time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.stepsTotal.WithLabelValues(step, outcome).Inc()
	r.stepDurationSeconds.WithLabelValues(step).Observe(d.Seconds())
}

// Time runs fn and records it as step.
func (r *Recorder) Time(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Observe(step, time.Since(start), err)
	return err
}

// SetVersion records the resolved version. reason is "none" when no fallback applied.
func (r *Recorder) SetVersion(version, reason string) {
	r.versionInfo.Reset()
	r.versionInfo.WithLabelValues(version, reason).Set(1)
}

// SetRequirements records how many requirements were emitted.
func (r *Recorder) SetRequirements(n int) {
	r.requirements.Set(float64(n))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
