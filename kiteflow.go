package kiteflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/kiteflow/internal/compiler"
	"github.com/aretw0/kiteflow/internal/runtime"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// Result summarizes what one dispatch did: matched entries, emitted effects
// and the descriptive records of visited command options.
type Result = runtime.Result

// Engine is the high-level entry point for the kiteflow library.
// It owns the runtime tree built at startup and serves events one at a time.
type Engine struct {
	runtime *runtime.Engine
	tree    *domain.Tree
	flow    *domain.FlowData
	config  map[string]string

	loader       ports.FlowLoader
	configSource ports.ConfigSource
	responses    ports.ResponseSink
	logSink      ports.LogSink
	responder    ports.TextResponder
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	strict       bool

	mu   sync.Mutex
	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLogSink routes log actions to sink instead of the engine logger.
func WithLogSink(sink ports.LogSink) Option {
	return func(e *Engine) {
		e.logSink = sink
	}
}

// WithTextResponder routes text responses to r.
func WithTextResponder(r ports.TextResponder) Option {
	return func(e *Engine) {
		e.responder = r
	}
}

// WithResponseSink sets the collaborator receiving one response per event.
func WithResponseSink(sink ports.ResponseSink) Option {
	return func(e *Engine) {
		e.responses = sink
	}
}

// WithConfigSource sets where the plugin configuration is read from at startup.
func WithConfigSource(src ports.ConfigSource) Option {
	return func(e *Engine) {
		e.configSource = src
	}
}

// WithStrictIDs rejects flows with duplicate node ids at load time.
func WithStrictIDs(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithName labels the engine (and its log lines) with a flow name.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New reads the graph source once and builds the runtime tree.
// Any failure here is terminal: the engine is not returned.
func New(loader ports.FlowLoader, opts ...Option) (*Engine, error) {
	return NewWithContext(context.Background(), loader, opts...)
}

// NewWithContext is New with a caller supplied context for the startup reads.
func NewWithContext(ctx context.Context, loader ports.FlowLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, errors.New("a flow loader is required")
	}

	eng := &Engine{loader: loader}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized so the runtime never receives nil.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("flow", eng.Name)
	}

	data, format, err := loader.LoadFlow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}

	flow, err := compiler.NewParser().ParseFormat(data, compiler.Format(format))
	if err != nil {
		return nil, err
	}

	tree, err := compiler.NewBuilder(
		compiler.WithStrictIDs(eng.strict),
		compiler.WithBuilderLogger(eng.logger),
	).Build(flow)
	if err != nil {
		return nil, fmt.Errorf("failed to build flow: %w", err)
	}
	eng.flow = flow
	eng.tree = tree

	eng.config = map[string]string{}
	if eng.configSource != nil {
		cfg, err := eng.configSource.Config(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read plugin config: %w", err)
		}
		eng.config = cfg
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	if eng.logSink != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLogSink(eng.logSink))
	}
	if eng.responder != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithTextResponder(eng.responder))
	}
	eng.runtime = runtime.NewEngine(runtimeOpts...)

	eng.logger.Info("flow loaded", "nodes", len(flow.Nodes), "edges", len(flow.Edges), "entries", len(tree.Entries))
	return eng, nil
}

// HandleEvent dispatches one event and reports the outcome to the response sink.
func (e *Engine) HandleEvent(ctx context.Context, event domain.Event) domain.EventResponse {
	_, resp := e.Dispatch(ctx, event)
	return resp
}

// Dispatch is HandleEvent that also returns what the walk produced.
// Dispatches are serialized: one event runs to completion before the next starts.
func (e *Engine) Dispatch(ctx context.Context, event domain.Event) (Result, domain.EventResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	res, err := e.runtime.Dispatch(ctx, e.tree, event)
	resp := responseFor(event, res, err)
	if !resp.Success {
		e.logger.Warn("event failed", "event_id", event.ID, "event_kind", event.Kind, "code", resp.Error.Code, "error", resp.Error.Message)
	}

	if e.responses != nil {
		if err := e.responses.Respond(ctx, event, resp); err != nil {
			e.logger.Error("failed to send response", "event_id", event.ID, "error", err)
		}
	}
	return res, resp
}

func responseFor(event domain.Event, res Result, err error) domain.EventResponse {
	switch {
	case errors.Is(err, runtime.ErrRecursionLimit):
		return domain.EventFailure(domain.CodeRecursionLimit, err.Error())
	case errors.Is(err, runtime.ErrUnimplementedMode):
		return domain.EventFailure(domain.CodeUnimplementedMode, err.Error())
	case err != nil:
		return domain.EventFailure(domain.CodeUnknown, err.Error())
	case !res.Handled():
		return domain.EventFailure(domain.CodeNoHandler, fmt.Sprintf("%v: %s", domain.ErrNoHandler, event.Kind))
	}
	return domain.EventSuccess()
}

// Events returns the sorted event kinds the flow subscribes to.
func (e *Engine) Events() []string {
	return e.tree.Events()
}

// Config returns the plugin configuration read at startup.
func (e *Engine) Config() map[string]string {
	out := make(map[string]string, len(e.config))
	for k, v := range e.config {
		out[k] = v
	}
	return out
}

// Tree returns the runtime tree. It must not be modified.
func (e *Engine) Tree() *domain.Tree {
	return e.tree
}

// Flow returns the declarative flow the tree was built from.
func (e *Engine) Flow() *domain.FlowData {
	return e.flow
}

// Commands describes the command entries of the flow with their options,
// for hosts that register commands ahead of time.
func (e *Engine) Commands() []CommandSpec {
	var specs []CommandSpec
	for _, cmd := range e.tree.Commands() {
		spec := CommandSpec{Name: cmd.Name, Description: cmd.Description}
		for _, ref := range cmd.Options {
			opt := e.tree.Node(ref)
			spec.Options = append(spec.Options, domain.OptionRecord{
				NodeID:      opt.ID,
				Name:        opt.Name,
				Description: opt.Description,
				Required:    opt.Required,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

// CommandSpec is the registration record of one command entry.
type CommandSpec struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Options     []domain.OptionRecord `json:"options,omitempty"`
}
