// Package metrics exposes Prometheus counters for report generation.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeResolved = "resolved"
	OutcomeSkipped  = "skipped"
)

// Metrics holds the report counters.
type Metrics struct {
	Reports *prometheus.CounterVec
	Devices *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "home_reports_total",
			Help: "Number of reports generated, by home.",
		}, []string{"home"}),
		Devices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "home_report_devices_total",
			Help: "Devices visited while generating reports, by outcome.",
		}, []string{"home", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Reports, m.Devices)
	}
	return m
}

// ObserveReport records one report and the per-device outcomes.
func (m *Metrics) ObserveReport(home string, resolved, skipped int) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(home).Inc()
	m.Devices.WithLabelValues(home, OutcomeResolved).Add(float64(resolved))
	m.Devices.WithLabelValues(home, OutcomeSkipped).Add(float64(skipped))
}
