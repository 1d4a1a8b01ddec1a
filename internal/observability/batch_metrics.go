package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchCollector exposes batch-runner Prometheus metrics.
type BatchCollector struct {
	gatherer prometheus.Gatherer

	JobDuration  prometheus.Histogram
	JobsInFlight prometheus.Gauge
	JobFailures  prometheus.Counter
}

// NewBatchCollector registers batch metrics against the provided registerer.
func NewBatchCollector(reg prometheus.Registerer) (*BatchCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "longitude_batch_job_duration_seconds",
		Help:    "Duration of individual batch jobs.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}), "longitude_batch_job_duration_seconds")
	if err != nil {
		return nil, err
	}

	inFlight, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "longitude_batch_jobs_in_flight",
		Help: "Number of batch jobs currently running.",
	}), "longitude_batch_jobs_in_flight")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "longitude_batch_job_failures_total",
		Help: "Cumulative number of batch jobs that returned an error.",
	}), "longitude_batch_job_failures_total")
	if err != nil {
		return nil, err
	}

	return &BatchCollector{
		gatherer:     gatherer,
		JobDuration:  duration,
		JobsInFlight: inFlight,
		JobFailures:  failures,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *BatchCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// JobStarted marks one job as running.
func (c *BatchCollector) JobStarted() {
	if c == nil || c.JobsInFlight == nil {
		return
	}
	c.JobsInFlight.Inc()
}

// JobFinished records a completed job.
func (c *BatchCollector) JobFinished(d time.Duration, err error) {
	if c == nil {
		return
	}
	if c.JobsInFlight != nil {
		c.JobsInFlight.Dec()
	}
	if c.JobDuration != nil {
		c.JobDuration.Observe(d.Seconds())
	}
	if err != nil && c.JobFailures != nil {
		c.JobFailures.Inc()
	}
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
