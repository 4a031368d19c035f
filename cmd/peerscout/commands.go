package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/poiesic/peerscout"
	"github.com/poiesic/peerscout/batch"
	"github.com/poiesic/peerscout/config"
	"github.com/poiesic/peerscout/observability"
	"github.com/poiesic/peerscout/pipeline"
	"github.com/poiesic/peerscout/server"
	"github.com/poiesic/peerscout/version"
	"github.com/urfave/cli/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

// newScout builds a Scout from environment settings with tracing attached.
// The caller shuts down the returned tracer provider after closing the Scout.
func newScout(ctx context.Context, cfg *config.Config) (*peerscout.Scout, *sdktrace.TracerProvider, error) {
	tp, err := observability.InitTracer(ctx, cfg.Observability(version.Current))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	logger := slog.Default()
	scout, err := peerscout.New(cfg.AIConfig(),
		peerscout.WithLogger(logger),
		peerscout.WithPipelineOptions(
			pipeline.WithTracerProvider(tp),
			pipeline.WithMonitor(pipeline.NewLogMonitor(logger)),
		),
	)
	if err != nil {
		shutdownTracer(tp)
		return nil, nil, fmt.Errorf("failed to create scout: %w", err)
	}
	return scout, tp, nil
}

func shutdownTracer(tp *sdktrace.TracerProvider) {
	if err := tp.Shutdown(context.Background()); err != nil {
		slog.Error("error shutting down tracer", "err", err)
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scout, tp, err := newScout(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tp)
	defer scout.Close()

	srv := server.New(scout.Pipeline(),
		server.WithAPIKey(cfg.APIKey),
		server.WithTimeout(cfg.RequestTimeout),
		server.WithAllowedOrigins(cfg.AllowedOrigins()),
		server.WithVersion(version.Current),
		server.WithHealth(server.Health{
			SearchKeyPresent: cfg.SearchAPIKey != "",
			ModelKeyPresent:  cfg.ModelAPIKey() != "",
			ModelProvider:    cfg.ModelProvider,
		}),
	)

	addr := c.String("addr")
	if addr == "" {
		addr = cfg.Addr()
	}
	httpServer := srv.HTTPServer(addr)
	shutdownTimeout := c.Duration("shutdown-timeout")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", addr, "version", version.Current, "model_provider", cfg.ModelProvider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func searchCommand(c *cli.Context) error {
	req, err := readSearchRequest(c.String("request"), c.String("company"), c.String("concept"))
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := c.Context
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	scout, tp, err := newScout(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tp)
	defer scout.Close()

	companies, err := scout.Find(ctx, req.Company, req.Concept)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(companies)
}

// readSearchRequest reads either a combined request file or separate company
// and concept files.
func readSearchRequest(requestPath, companyPath, conceptPath string) (batch.Request, error) {
	var req batch.Request
	switch {
	case requestPath != "" && (companyPath != "" || conceptPath != ""):
		return req, errors.New("use either --request or --company with --concept, not both")
	case requestPath != "":
		return req, readJSONFile(requestPath, &req)
	case companyPath != "" && conceptPath != "":
		if err := readJSONFile(companyPath, &req.Company); err != nil {
			return req, err
		}
		return req, readJSONFile(conceptPath, &req.Concept)
	default:
		return req, errors.New("either --request or both --company and --concept are required")
	}
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func batchCommand(c *cli.Context) error {
	if c.Int("workers") <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if c.Float64("rate-limit-rps") < 0 {
		return fmt.Errorf("rate-limit-rps must not be negative")
	}

	requests, err := batch.LoadRequests(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scout, tp, err := newScout(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tp)
	defer scout.Close()

	results, err := scout.Batch(ctx, requests,
		batch.WithWorkers(c.Int("workers")),
		batch.WithRateLimit(c.Float64("rate-limit-rps")),
		batch.WithProgress(c.App.ErrWriter, c.Int("report-interval")),
	)
	if err != nil {
		return err
	}
	return writeResults(c.App.Writer, results)
}

// writeResults prints one JSON object per line.
func writeResults(w io.Writer, results []batch.Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}
