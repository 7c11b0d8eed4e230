package hashsession

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Manager updates. They are
// created unregistered; pass WithRegisterer to expose them.
type Metrics struct {
	Created        prometheus.Counter
	Released       prometheus.Counter
	CreateFailures *prometheus.CounterVec
	Misuse         *prometheus.CounterVec
	Live           prometheus.Gauge
}

// NewMetrics creates the session collectors labelled with the algorithm.
func NewMetrics(a Algorithm) *Metrics {
	labels := prometheus.Labels{"algorithm": a.String()}

	return &Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "hashsession",
			Name:        "sessions_created_total",
			Help:        "Sessions successfully created.",
			ConstLabels: labels,
		}),
		Released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "hashsession",
			Name:        "sessions_released_total",
			Help:        "Sessions released, explicitly or by Close.",
			ConstLabels: labels,
		}),
		CreateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "hashsession",
			Name:        "create_failures_total",
			Help:        "Create calls that returned the null handle, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		Misuse: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "hashsession",
			Name:        "ignored_calls_total",
			Help:        "Calls turned into no-ops, by operation and reason.",
			ConstLabels: labels,
		}, []string{"op", "reason"}),
		Live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "hashsession",
			Name:        "sessions_live",
			Help:        "Sessions created and not yet released.",
			ConstLabels: labels,
		}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.Created, m.Released, m.CreateFailures, m.Misuse, m.Live,
	}
	var errs []error
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
