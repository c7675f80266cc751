// Package metrics exposes Prometheus instrumentation for the reminder
// dispatcher and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink records dispatcher outcomes. The dispatcher depends on this
// interface so tests can count events without a registry.
type Sink interface {
	SweepStarted()
	SweepCompleted(durationSeconds float64, due int)
	ReminderSent(method string)
	ReminderFailed(method string)
	ReminderSkipped(reason string)
}

// Prometheus is a Sink backed by promauto collectors on a registry.
type Prometheus struct {
	sweeps        prometheus.Counter
	sweepDuration prometheus.Histogram
	dueGauge      prometheus.Gauge
	sent          *prometheus.CounterVec
	failed        *prometheus.CounterVec
	skipped       *prometheus.CounterVec
}

// NewPrometheus registers the dispatcher collectors on reg and returns the
// sink. Pass prometheus.DefaultRegisterer outside of tests.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		sweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminder_sweeps_total",
			Help: "Number of dispatcher sweeps started.",
		}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reminder_sweep_duration_seconds",
			Help:    "Duration of dispatcher sweeps.",
			Buckets: prometheus.DefBuckets,
		}),
		dueGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reminder_due_last_sweep",
			Help: "Reminders found due in the most recent sweep.",
		}),
		sent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_sent_total",
			Help: "Reminders delivered, by method.",
		}, []string{"method"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_failed_total",
			Help: "Reminder deliveries that errored, by method.",
		}, []string{"method"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_skipped_total",
			Help: "Reminders skipped without a delivery attempt, by reason.",
		}, []string{"reason"}),
	}
}

func (p *Prometheus) SweepStarted() { p.sweeps.Inc() }

func (p *Prometheus) SweepCompleted(durationSeconds float64, due int) {
	p.sweepDuration.Observe(durationSeconds)
	p.dueGauge.Set(float64(due))
}

func (p *Prometheus) ReminderSent(method string)    { p.sent.WithLabelValues(method).Inc() }
func (p *Prometheus) ReminderFailed(method string)  { p.failed.WithLabelValues(method).Inc() }
func (p *Prometheus) ReminderSkipped(reason string) { p.skipped.WithLabelValues(reason).Inc() }

// Noop discards every event. Useful when metrics are disabled.
type Noop struct{}

func (Noop) SweepStarted()               {}
func (Noop) SweepCompleted(float64, int) {}
func (Noop) ReminderSent(string)         {}
func (Noop) ReminderFailed(string)       {}
func (Noop) ReminderSkipped(string)      {}
