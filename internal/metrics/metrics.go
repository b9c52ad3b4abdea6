// Package metrics counts commands and tracks list size on a private
// prometheus registry that can be dumped to a textfile at exit.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors for one session.
type Metrics struct {
	Registry *prometheus.Registry

	commands *prometheus.CounterVec
	tasks    prometheus.Gauge
	duration *prometheus.HistogramVec
}

// New registers the karen collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "karen_commands_total",
				Help: "Total number of commands handled, by keyword and outcome",
			},
			[]string{"command", "outcome"},
		),
		tasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "karen_tasks",
				Help: "Number of tasks in the list",
			},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "karen_command_duration_seconds",
				Help:    "Duration of command handling in seconds, including persistence",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}
}

// ObserveCommand records one handled command. A nil receiver is a no-op.
func (m *Metrics) ObserveCommand(command string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.commands.WithLabelValues(command, outcome).Inc()
	m.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// SetTasks sets the list size gauge.
func (m *Metrics) SetTasks(n int) {
	if m == nil {
		return
	}
	m.tasks.Set(float64(n))
}

// WriteFile writes the registry in text exposition format to path.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
