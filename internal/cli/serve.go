package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/kiteflow"
	httpAdapter "github.com/aretw0/kiteflow/pkg/adapters/http"
	"github.com/aretw0/kiteflow/pkg/adapters/bolt"
	"github.com/aretw0/kiteflow/pkg/adapters/mcp"
	"github.com/aretw0/kiteflow/pkg/observability"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	FlowPath string
	Port     int
	Journal  string
	Metrics  bool
}

// ServeComponents builds the engine and HTTP handler options for serve.
// The returned cleanup closes the journal.
func ServeComponents(ctx context.Context, app *App, opts ServeOptions) (*kiteflow.Engine, []httpAdapter.Option, func(), error) {
	cleanup := func() {}
	var sink ports.ResponseSink

	journalPath := opts.Journal
	if journalPath == "" {
		journalPath = app.Config.Journal
	}
	if journalPath != "" {
		journal, err := bolt.Open(journalPath)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanup = func() { journal.Close() }
		sink = journal
	}

	handlerOpts := []httpAdapter.Option{httpAdapter.WithLogger(app.Logger)}
	engineOpts := []kiteflow.Option{}
	if opts.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		engineOpts = append(engineOpts, app.hooks(metrics.Hooks()))
		sink = metrics.ObserveResponses(sink)
		handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	if sink != nil {
		engineOpts = append(engineOpts, kiteflow.WithResponseSink(sink))
	}

	eng, err := app.Engine(ctx, opts.FlowPath, engineOpts...)
	if err != nil {
		cleanup()
		return nil, nil, func() {}, err
	}
	return eng, handlerOpts, cleanup, nil
}

// Serve runs the HTTP surface until ctx is cancelled.
func Serve(ctx context.Context, app *App, opts ServeOptions) error {
	eng, handlerOpts, cleanup, err := ServeComponents(ctx, app, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	port := opts.Port
	if port == 0 {
		port = app.Config.HTTP.Port
	}
	handler := httpAdapter.NewHandler(eng, handlerOpts...)
	return httpAdapter.ListenAndServe(ctx, fmt.Sprintf(":%d", port), handler, app.Logger)
}

// ServeMCP runs the MCP surface over stdio or SSE.
func ServeMCP(ctx context.Context, app *App, flowPath, transport string, port int) error {
	eng, err := app.Engine(ctx, flowPath)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(eng, app.Logger)
	switch transport {
	case "stdio":
		app.Logger.Info("Starting kiteflow MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, port)
	}
	return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
}
