package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/model"
)

var _ core.MetricsRecorder = (*MeasurementCollector)(nil)

func TestObserveMeasurementRecordsCountAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewMeasurementCollector(reg)
	if err != nil {
		t.Fatalf("NewMeasurementCollector: %v", err)
	}

	collector.ObserveMeasurement("mars", model.CountPositive, "ok", 20*time.Millisecond)
	collector.ObserveMeasurement("mars", model.CountPositive, "error", time.Millisecond)

	if got := testutil.ToFloat64(collector.Measurements.WithLabelValues("mars", "count-positive", "ok")); got != 1 {
		t.Fatalf("longitude_measurements_total{outcome=ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Measurements.WithLabelValues("mars", "count-positive", "error")); got != 1 {
		t.Fatalf("longitude_measurements_total{outcome=error} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "longitude_measurement_duration_seconds", map[string]string{"body": "mars"}); count != 2 {
		t.Fatalf("longitude_measurement_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestCountersIgnoreNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewMeasurementCollector(reg)
	if err != nil {
		t.Fatalf("NewMeasurementCollector: %v", err)
	}

	collector.AddProviderQueries("sun", "sample", 21)
	collector.AddProviderQueries("sun", "refine", 0)
	collector.AddSignChanges("sun", 2)
	collector.AddGuardSkips("true-node", 1)
	collector.AddGuardSkips("true-node", -3)

	if got := testutil.ToFloat64(collector.ProviderQueries.WithLabelValues("sun", "sample")); got != 21 {
		t.Fatalf("sample queries = %v, want 21", got)
	}
	if got := testutil.CollectAndCount(collector.ProviderQueries); got != 1 {
		t.Fatalf("provider query series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(collector.SignChanges.WithLabelValues("sun")); got != 2 {
		t.Fatalf("sign changes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.GuardSkips.WithLabelValues("true-node")); got != 1 {
		t.Fatalf("guard skips = %v, want 1", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *MeasurementCollector
	c.ObserveMeasurement("mars", model.ZeroOut, "ok", time.Second)
	c.AddProviderQueries("mars", "sample", 1)
	c.AddSignChanges("mars", 1)
	c.AddGuardSkips("mars", 1)

	var b *BatchCollector
	b.JobStarted()
	b.JobFinished(time.Second, nil)
}

func TestRegisteringTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMeasurementCollector(reg)
	if err != nil {
		t.Fatalf("first NewMeasurementCollector: %v", err)
	}
	second, err := NewMeasurementCollector(reg)
	if err != nil {
		t.Fatalf("second NewMeasurementCollector: %v", err)
	}
	first.AddSignChanges("venus", 1)
	second.AddSignChanges("venus", 1)

	if got := testutil.ToFloat64(first.SignChanges.WithLabelValues("venus")); got != 2 {
		t.Fatalf("shared sign change counter = %v, want 2", got)
	}
}

func TestMetricsHandlerExposesMeasurementMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewMeasurementCollector(reg)
	if err != nil {
		t.Fatalf("NewMeasurementCollector: %v", err)
	}
	collector.ObserveMeasurement("mars", model.ZeroOut, "ok", time.Millisecond)
	collector.AddProviderQueries("mars", "refine", 13)
	collector.AddSignChanges("mars", 1)
	collector.AddGuardSkips("mars", 1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"longitude_measurements_total",
		"longitude_measurement_duration_seconds",
		"longitude_provider_queries_total",
		"longitude_sign_changes_total",
		"longitude_guard_skips_total",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, `longitude_provider_queries_total{body="mars",phase="refine"} 13`) {
		t.Fatalf("/metrics output missing refine query count: %s", body)
	}
}

func TestBatchCollectorTracksJobs(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewBatchCollector(reg)
	if err != nil {
		t.Fatalf("NewBatchCollector: %v", err)
	}
	if collector.Gatherer() != reg {
		t.Fatalf("Gatherer should be the registry passed in")
	}

	collector.JobStarted()
	collector.JobStarted()
	if got := testutil.ToFloat64(collector.JobsInFlight); got != 2 {
		t.Fatalf("jobs in flight = %v, want 2", got)
	}
	collector.JobFinished(5*time.Millisecond, nil)
	collector.JobFinished(5*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(collector.JobsInFlight); got != 0 {
		t.Fatalf("jobs in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(collector.JobFailures); got != 1 {
		t.Fatalf("job failures = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "longitude_batch_job_duration_seconds", nil); count != 2 {
		t.Fatalf("job duration sample_count = %d, want 2", count)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
