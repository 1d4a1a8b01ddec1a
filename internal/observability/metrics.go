package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/signalsfoundry/longitude/model"
)

// MeasurementCollector bundles Prometheus metrics for the measurement engine.
// It satisfies core.MetricsRecorder.
type MeasurementCollector struct {
	gatherer prometheus.Gatherer

	Measurements    *prometheus.CounterVec
	Durations       *prometheus.HistogramVec
	ProviderQueries *prometheus.CounterVec
	SignChanges     *prometheus.CounterVec
	GuardSkips      *prometheus.CounterVec
}

// NewMeasurementCollector registers measurement metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registering twice against the same registry reuses the existing collectors.
func NewMeasurementCollector(reg prometheus.Registerer) (*MeasurementCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	measurements, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "longitude_measurements_total",
		Help: "Total number of measurements, labeled by body, policy, and outcome.",
	}, []string{"body", "policy", "outcome"}), "longitude_measurements_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "longitude_measurement_duration_seconds",
		Help:    "Wall time of one measurement in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"body"}), "longitude_measurement_duration_seconds")
	if err != nil {
		return nil, err
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "longitude_provider_queries_total",
		Help: "Position provider queries, labeled by body and engine phase.",
	}, []string{"body", "phase"}), "longitude_provider_queries_total")
	if err != nil {
		return nil, err
	}

	signChanges, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "longitude_sign_changes_total",
		Help: "Velocity sign changes located by bisection.",
	}, []string{"body"}), "longitude_sign_changes_total")
	if err != nil {
		return nil, err
	}

	skips, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "longitude_guard_skips_total",
		Help: "Segments dropped by the provider-noise guard.",
	}, []string{"body"}), "longitude_guard_skips_total")
	if err != nil {
		return nil, err
	}

	return &MeasurementCollector{
		gatherer:        gatherer,
		Measurements:    measurements,
		Durations:       durations,
		ProviderQueries: queries,
		SignChanges:     signChanges,
		GuardSkips:      skips,
	}, nil
}

// ObserveMeasurement counts one finished measurement and its latency.
func (c *MeasurementCollector) ObserveMeasurement(body string, policy model.Policy, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.Measurements != nil {
		c.Measurements.WithLabelValues(body, policy.String(), outcome).Inc()
	}
	if c.Durations != nil {
		c.Durations.WithLabelValues(body).Observe(elapsed.Seconds())
	}
}

// AddProviderQueries adds n provider calls made during phase.
func (c *MeasurementCollector) AddProviderQueries(body, phase string, n int) {
	if c == nil || c.ProviderQueries == nil || n <= 0 {
		return
	}
	c.ProviderQueries.WithLabelValues(body, phase).Add(float64(n))
}

func (c *MeasurementCollector) AddSignChanges(body string, n int) {
	if c == nil || c.SignChanges == nil || n <= 0 {
		return
	}
	c.SignChanges.WithLabelValues(body).Add(float64(n))
}

func (c *MeasurementCollector) AddGuardSkips(body string, n int) {
	if c == nil || c.GuardSkips == nil || n <= 0 {
		return
	}
	c.GuardSkips.WithLabelValues(body).Add(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *MeasurementCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
