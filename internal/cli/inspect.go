package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/internal/compiler"
	"github.com/aretw0/kiteflow/internal/dto"
	"github.com/aretw0/kiteflow/internal/presentation/graph"
	"github.com/aretw0/kiteflow/internal/runtime"
	"github.com/aretw0/kiteflow/internal/validator"
	"github.com/aretw0/kiteflow/pkg/adapters/memory"
	"github.com/aretw0/kiteflow/pkg/domain"
)

// ReadFlow loads and parses the flow without building it, so that broken
// flows can still be inspected.
func ReadFlow(ctx context.Context, app *App, flowPath string) (*domain.FlowData, error) {
	loader, _, err := app.Loader(flowPath)
	if err != nil {
		return nil, err
	}
	data, format, err := loader.LoadFlow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	return compiler.NewParser().ParseFormat(data, compiler.Format(format))
}

// Validate prints the validation report of the flow.
// The returned error is non-nil when the report has errors.
func Validate(ctx context.Context, app *App, flowPath string, jsonOut bool) error {
	flow, err := ReadFlow(ctx, app, flowPath)
	if err != nil {
		return err
	}

	report := validator.Validate(flow)
	if jsonOut {
		if err := json.NewEncoder(app.Out).Encode(report); err != nil {
			return err
		}
		return report.Err()
	}

	for _, issue := range report.Issues {
		fmt.Fprintln(app.Out, issue.String())
	}
	if err := report.Err(); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "Flow is valid!")
	return nil
}

// Graph writes the Mermaid diagram of the flow. Each kind in events is
// dispatched against a sandboxed engine and the visited nodes are highlighted;
// the node that aborted a dispatch is marked failed.
func Graph(ctx context.Context, app *App, flowPath string, events []string) error {
	flow, err := ReadFlow(ctx, app, flowPath)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		_, err := io.WriteString(app.Out, graph.GenerateMermaid(flow, nil))
		return err
	}

	overlay, err := trace(ctx, app, flow, events)
	if err != nil {
		return err
	}
	_, err = io.WriteString(app.Out, graph.GenerateMermaid(flow, overlay))
	return err
}

func trace(ctx context.Context, app *App, flow *domain.FlowData, events []string) (*graph.GraphOverlay, error) {
	var mu sync.Mutex
	seen := map[string]bool{}
	overlay := &graph.GraphOverlay{}

	loader, err := memory.NewFromFlow(*flow)
	if err != nil {
		return nil, err
	}
	eng, err := kiteflow.NewWithContext(ctx, loader,
		kiteflow.WithLogger(app.Logger),
		kiteflow.WithLogSink(memory.NewLogRecorder()),
		kiteflow.WithTextResponder(memory.NewTextRecorder()),
		kiteflow.WithConfigSource(app.Config.PluginSource()),
		app.hooks(domain.LifecycleHooks{
			OnNodeEnter: func(ctx context.Context, h *domain.NodeHook) {
				mu.Lock()
				defer mu.Unlock()
				if !seen[h.NodeID] {
					seen[h.NodeID] = true
					overlay.VisitedNodes = append(overlay.VisitedNodes, h.NodeID)
				}
			},
			OnDispatch: func(ctx context.Context, h *domain.DispatchHook) {
				if id := failedNode(h.Err); id != "" && overlay.FailedNode == "" {
					overlay.FailedNode = id
				}
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	for _, kind := range events {
		_, resp := eng.Dispatch(ctx, domain.Event{Kind: strings.TrimSpace(kind)})
		app.Logger.Debug("traced event", "event_kind", kind, "success", resp.Success)
	}
	return overlay, nil
}

func failedNode(err error) string {
	var rec *runtime.RecursionLimitError
	if errors.As(err, &rec) {
		return rec.NodeID
	}
	var mode *runtime.UnimplementedModeError
	if errors.As(err, &mode) {
		return mode.NodeID
	}
	return ""
}

// Events prints the event kinds the flow subscribes to, one per line,
// or the full manifest as JSON.
func Events(ctx context.Context, app *App, flowPath string, jsonOut bool) error {
	eng, err := app.Engine(ctx, flowPath)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(app.Out).Encode(dto.NewManifest(eng))
	}
	for _, kind := range eng.Events() {
		fmt.Fprintln(app.Out, kind)
	}
	return nil
}
