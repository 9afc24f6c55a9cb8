// Package metrics exposes run results as Prometheus metrics that can be
// written to a node-exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

const (
	MetricsNamespace = "goldrun"
)

// Recorder records case outcomes into its own registry.
type Recorder struct {
	runID    string
	registry *prometheus.Registry

	cases    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	summary  *prometheus.GaugeVec
}

var _ ports.Reporter = (*Recorder)(nil)

func NewRecorder(runID string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		runID:    runID,
		registry: reg,
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "cases_total",
			Help:      "Count of cases by result",
		}, []string{
			"run_id",
			"result",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "case_duration_seconds",
			Help:      "Interpreter wall time per case",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{
			"run_id",
		}),
		summary: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_summary",
			Help:      "Final counters of the run",
		}, []string{
			"run_id",
			"counter",
		}),
	}
}

// Registry returns the registry all metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RunStarted(string) {}

func (r *Recorder) CaseStarted(execution.TestCase) {}

func (r *Recorder) CaseFinished(outcome execution.CaseOutcome) {
	r.cases.WithLabelValues(r.runID, resultLabel(outcome)).Inc()
	if outcome.Kind == execution.OutcomeOK && outcome.Output != nil {
		r.duration.WithLabelValues(r.runID).Observe(outcome.Output.Duration.Seconds())
	}
}

func (r *Recorder) RunFinished(summary execution.RunSummary) {
	r.summary.WithLabelValues(r.runID, "processed").Set(float64(summary.Processed))
	r.summary.WithLabelValues(r.runID, "succeeded").Set(float64(summary.Succeeded))
	r.summary.WithLabelValues(r.runID, "failed").Set(float64(summary.Failed))
	r.summary.WithLabelValues(r.runID, "skipped").Set(float64(summary.Skipped))
}

// WriteTextfile atomically writes every metric to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func resultLabel(outcome execution.CaseOutcome) string {
	switch outcome.Kind {
	case execution.OutcomeSkipped:
		return "skip"
	case execution.OutcomeFatal:
		return "fatal"
	}
	if outcome.Passed() {
		return "pass"
	}
	return "fail"
}
