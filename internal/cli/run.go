package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/internal/dto"
	"github.com/aretw0/kiteflow/internal/presentation/tui"
	"github.com/aretw0/kiteflow/pkg/adapters/bolt"
	"github.com/aretw0/kiteflow/pkg/adapters/file"
	"github.com/aretw0/kiteflow/pkg/adapters/redis"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
	"github.com/aretw0/kiteflow/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	FlowPath string
	// FromRedis reads events from the redis queue instead of In.
	FromRedis bool
	// Drain stops once the redis queue is empty instead of waiting.
	Drain     bool
	JSON      bool
	Journal   string
	MaxEvents int
	In        io.Reader
}

// Run dispatches every event from the chosen source and prints the outcomes.
func Run(ctx context.Context, app *App, opts RunOptions) (runner.Stats, error) {
	sinks := []ports.ResponseSink{}

	journalPath := opts.Journal
	if journalPath == "" {
		journalPath = app.Config.Journal
	}
	if journalPath != "" {
		journal, err := bolt.Open(journalPath)
		if err != nil {
			return runner.Stats{}, err
		}
		defer journal.Close()
		sinks = append(sinks, journal)
	}

	var src ports.EventSource
	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithMaxEvents(opts.MaxEvents),
	}
	if opts.FromRedis {
		if opts.Drain {
			app.Config.Redis.Drain = true
		}
		adapter := app.Redis()
		if adapter == nil {
			return runner.Stats{}, fmt.Errorf("--redis requires redis.addr in the configuration")
		}
		src = adapter
		sinks = append(sinks, adapter)
		runnerOpts = append(runnerOpts, runner.WithLocker(redis.NewLocker(adapter, ""), app.Config.Redis.QueueKey, 0))
	} else {
		in := opts.In
		if in == nil {
			in = os.Stdin
		}
		src = file.NewLineSource(in)
	}

	responses := ports.TeeResponseSink(sinks...)
	eng, err := app.Engine(ctx, opts.FlowPath,
		// Effects are printed from the dispatch result.
		kiteflow.WithLogSink(ports.LogSinkFunc(func(context.Context, domain.LogLevel, string) {})),
		kiteflow.WithResponseSink(responses),
	)
	if err != nil {
		return runner.Stats{}, err
	}

	runnerOpts = append(runnerOpts,
		runner.WithObserver(resultPrinter(app, opts.JSON)),
		runner.WithRejectionSink(responses),
	)
	return runner.NewRunner(runnerOpts...).Run(ctx, eng, src)
}

func resultPrinter(app *App, jsonMode bool) runner.Observer {
	if jsonMode {
		enc := json.NewEncoder(app.Out)
		return func(ctx context.Context, ev domain.Event, res kiteflow.Result, resp domain.EventResponse) {
			if err := enc.Encode(dto.NewDispatchResponse(res, resp)); err != nil {
				app.Logger.Error("failed to write result", "error", err)
			}
		}
	}

	printer := tui.NewPrinter(app.Out)
	if f, ok := app.Out.(*os.File); ok && tui.IsTerminal(f) {
		printer.Color = true
		printer.Render = tui.NewRenderer()
	}
	return func(ctx context.Context, ev domain.Event, res kiteflow.Result, resp domain.EventResponse) {
		printer.PrintResult(res, resp)
	}
}
