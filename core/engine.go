package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/longitude/internal/logging"
	"github.com/signalsfoundry/longitude/model"
	"github.com/signalsfoundry/longitude/timectrl"
)

const tracerName = "github.com/signalsfoundry/longitude/core"

// ErrUnknownBody is returned when a request names a body the catalog does
// not know.
var ErrUnknownBody = errors.New("unknown body")

// BodyCatalog resolves body definitions. kb.Catalog implements it.
type BodyCatalog interface {
	GetBody(id string) (model.BodyDefinition, bool)
}

// MetricsRecorder receives per-measurement counters. Implementations must
// be safe for concurrent use.
type MetricsRecorder interface {
	ObserveMeasurement(body string, policy model.Policy, outcome string, elapsed time.Duration)
	AddProviderQueries(body, phase string, n int)
	AddSignChanges(body string, n int)
	AddGuardSkips(body string, n int)
}

// Request describes one measurement.
type Request struct {
	Body   string
	Start  time.Time
	End    time.Time
	Policy model.Policy
	Frame  model.Frame

	// MaxError bounds sign change timing; zero means DefaultMaxError.
	MaxError time.Duration
}

// Report is the full outcome of one measurement.
type Report struct {
	Body   string
	Range  timectrl.Range
	Policy model.Policy
	Frame  model.Frame
	Totals Totals

	Samples         int // samples in the merged series
	SignChanges     int // refined sign change samples merged in
	ProviderQueries int

	// Series is the merged sample sequence; Stations holds the refined
	// samples that were merged into it.
	Series   []model.Sample
	Stations []model.Sample
}

// Degrees returns the measurement under the request's policy.
func (r Report) Degrees() float64 {
	return r.Totals.For(r.Policy)
}

// Engine measures longitude movement. It holds no per-measurement state, so
// one Engine may serve concurrent callers.
type Engine struct {
	provider PositionProvider
	catalog  BodyCatalog
	log      logging.Logger
	metrics  MetricsRecorder
	maxError time.Duration
	tracer   trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. Guard skips are logged as warnings.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxError sets the default sign change bracket width for requests that
// leave MaxError unset.
func WithMaxError(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.maxError = d
		}
	}
}

// NewEngine builds an Engine over a provider and a body catalog.
func NewEngine(provider PositionProvider, catalog BodyCatalog, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		catalog:  catalog,
		log:      logging.Noop(),
		maxError: DefaultMaxError,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Measure returns the net displacement in degrees for req.
func (e *Engine) Measure(ctx context.Context, req Request) (float64, error) {
	rep, err := e.Run(ctx, req)
	if err != nil {
		return 0, err
	}
	return rep.Degrees(), nil
}

// Run executes the measurement phases in order: sampling, sign change
// refinement, merge, accumulation. Reversed ranges are swapped and an empty
// range returns a zero report without touching the provider. Provider
// errors are returned unchanged.
func (e *Engine) Run(ctx context.Context, req Request) (rep Report, err error) {
	started := time.Now()
	r := timectrl.NewRange(req.Start, req.End)
	rep = Report{Body: req.Body, Range: r, Policy: req.Policy, Frame: req.Frame}

	ctx, span := e.tracer.Start(ctx, "longitude.Measure", trace.WithAttributes(
		attribute.String("body", req.Body),
		attribute.String("policy", req.Policy.String()),
		attribute.String("frame", req.Frame.String()),
	))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if e.metrics != nil {
			e.metrics.ObserveMeasurement(req.Body, req.Policy, outcome, time.Since(started))
		}
	}()

	if r.Empty() {
		return rep, nil
	}

	body, ok := e.catalog.GetBody(req.Body)
	if !ok {
		return rep, fmt.Errorf("%w: %q", ErrUnknownBody, req.Body)
	}

	maxError := req.MaxError
	if maxError <= 0 {
		maxError = e.maxError
	}
	log := e.log.With(
		logging.String("body", body.ID),
		logging.String("frame", req.Frame.String()),
	)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		log = log.With(logging.String("measurement_id", id))
	}

	q := &query{provider: e.provider, body: body.ID, frame: req.Frame}

	base, err := e.phase(ctx, "sample", func(ctx context.Context) ([]model.Sample, error) {
		return sampleRange(ctx, q, r, body.Step)
	})
	if err != nil {
		return rep, err
	}
	sampled := q.calls
	e.addQueries(body.ID, "sample", sampled)

	refined, err := e.phase(ctx, "refine", func(ctx context.Context) ([]model.Sample, error) {
		return refineAll(ctx, q, base, maxError)
	})
	e.addQueries(body.ID, "refine", q.calls-sampled)
	if err != nil {
		return rep, err
	}

	series, stations := mergeSeries(base, refined)
	rep.Totals = accumulate(series, body.NoiseGuard, func(seg Segment) {
		log.Warn(ctx, "skipping segment with seam noise",
			logging.Time("from", seg.Prev.Time),
			logging.Time("to", seg.Curr.Time),
			logging.Float("from_longitude", seg.Prev.Longitude),
			logging.Float("to_longitude", seg.Curr.Longitude),
			logging.Float("velocity", seg.Prev.Velocity),
			logging.Float("raw_delta", seg.Raw),
		)
	})

	rep.Series = series
	rep.Stations = stations
	rep.Samples = len(series)
	rep.SignChanges = len(stations)
	rep.ProviderQueries = q.calls

	if e.metrics != nil {
		e.metrics.AddSignChanges(body.ID, rep.SignChanges)
		e.metrics.AddGuardSkips(body.ID, rep.Totals.Skipped)
	}
	span.SetAttributes(
		attribute.Int("samples", rep.Samples),
		attribute.Int("sign_changes", rep.SignChanges),
		attribute.Int("guard_skips", rep.Totals.Skipped),
	)
	log.Debug(ctx, "measurement complete",
		logging.String("policy", req.Policy.String()),
		logging.Float("degrees", rep.Degrees()),
		logging.Int("samples", rep.Samples),
		logging.Int("sign_changes", rep.SignChanges),
		logging.Int("provider_queries", rep.ProviderQueries),
	)
	return rep, nil
}

func (e *Engine) phase(ctx context.Context, name string, fn func(context.Context) ([]model.Sample, error)) ([]model.Sample, error) {
	ctx, span := e.tracer.Start(ctx, "longitude."+name)
	defer span.End()

	out, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("samples", len(out)))
	return out, nil
}

func (e *Engine) addQueries(body, phase string, n int) {
	if e.metrics != nil && n > 0 {
		e.metrics.AddProviderQueries(body, phase, n)
	}
}
