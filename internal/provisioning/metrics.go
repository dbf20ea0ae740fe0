package provisioning

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Step results recorded in metrics.
const (
	ResultExecuted = "executed"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
)

// Metrics collects step outcomes on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
	runsTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers the workflow metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "azrunbook",
				Subsystem: "workflow",
				Name:      "steps_total",
				Help:      "Total number of steps by result",
			},
			[]string{"workflow", "step", "result"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "azrunbook",
				Subsystem: "workflow",
				Name:      "step_duration_seconds",
				Help:      "Duration of executed steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
			},
			[]string{"workflow", "step"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "azrunbook",
				Subsystem: "workflow",
				Name:      "step_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful execution of a step",
			},
			[]string{"workflow", "step"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "azrunbook",
				Subsystem: "workflow",
				Name:      "runs_total",
				Help:      "Total number of workflow runs by result",
			},
			[]string{"workflow", "result"},
		),
	}
	m.registry.MustRegister(m.stepsTotal, m.stepDuration, m.lastSuccess, m.runsTotal)
	return m
}

// Registry returns the registry holding the workflow metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordStep(workflow string, step StepID, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(workflow, string(step), result).Inc()
	if result == ResultExecuted {
		m.stepDuration.WithLabelValues(workflow, string(step)).Observe(took.Seconds())
		m.lastSuccess.WithLabelValues(workflow, string(step)).SetToCurrentTime()
	}
}

func (m *Metrics) recordRun(workflow string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runsTotal.WithLabelValues(workflow, result).Inc()
}

// WriteToTextfile writes the metrics in the text exposition format for the
// node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
