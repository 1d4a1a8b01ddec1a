package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/ephemeris"
	"github.com/signalsfoundry/longitude/internal/logging"
	"github.com/signalsfoundry/longitude/internal/observability"
	"github.com/signalsfoundry/longitude/kb"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand. It is built in the root
// command's PersistentPreRunE and torn down by run once the command returns.
type app struct {
	catalogPath string
	logLevel    string
	logFormat   string
	metricsAddr string

	log          logging.Logger
	catalog      *kb.Catalog
	engine       *core.Engine
	metrics      *observability.MeasurementCollector
	batchMetrics *observability.BatchCollector

	metricsSrv      *http.Server
	shutdownTracing func(context.Context) error
}

// run executes the CLI with args. Tracing is flushed and the metrics server
// stopped whether or not the command succeeds.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd()
	defer a.teardown(ctx)

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "longitude",
		Short: "Measure longitude movement of planets, lunar nodes and satellites",
		Long: `Measure the net angular displacement of a body between two instants.

Retrograde stretches are located by bisection and accounted for under one
of three policies: zero-out, count-positive or count-negative.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.catalogPath, "catalog", "", "YAML body catalog overlaid on the built-in bodies")
	flags.StringVar(&a.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", envOr("LOG_FORMAT", "text"), "log format: text or json")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while running")

	root.AddCommand(
		newMeasureCmd(a),
		newBatchCmd(a),
		newBodiesCmd(a),
		newMergeCSVCmd(a),
		newPlotCmd(a),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a.log = logging.New(logging.Config{
		Level:  a.logLevel,
		Format: a.logFormat,
		Output: cmd.ErrOrStderr(),
	})

	var err error
	if a.catalogPath == "" {
		a.catalog, err = kb.DefaultCatalog()
	} else {
		a.catalog, err = kb.LoadCatalogFile(a.catalogPath)
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	reg := prometheus.NewRegistry()
	if a.metrics, err = observability.NewMeasurementCollector(reg); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if a.batchMetrics, err = observability.NewBatchCollector(reg); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if a.metricsAddr != "" {
		a.metricsSrv = serveMetrics(a.metricsAddr, a.metrics, a.log)
	}

	tracing := observability.TracingConfigFromEnv()
	tracing.Writer = cmd.ErrOrStderr()
	if a.shutdownTracing, err = observability.InitTracing(ctx, tracing, a.log); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	a.engine = core.NewEngine(
		ephemeris.NewProvider(a.catalog),
		a.catalog,
		core.WithLogger(a.log),
		core.WithMetrics(a.metrics),
	)
	return nil
}

func (a *app) teardown(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	observability.ShutdownWithTimeout(ctx, a.shutdownTracing, a.log)
	a.shutdownTracing = nil
	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(shutdownCtx)
		a.metricsSrv = nil
	}
}

func serveMetrics(addr string, collector *observability.MeasurementCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseTime accepts RFC 3339 timestamps or bare dates (midnight UTC).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
