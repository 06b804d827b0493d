package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// Engine walks a runtime Tree once per event.
// It is stateless between dispatches; all per-event state lives in EventContext.
type Engine struct {
	logSink   ports.LogSink
	responder ports.TextResponder
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLogSink sets the collaborator receiving log action records.
func WithLogSink(sink ports.LogSink) Option {
	return func(e *Engine) {
		e.logSink = sink
	}
}

// WithTextResponder sets the collaborator receiving text responses.
func WithTextResponder(r ports.TextResponder) Option {
	return func(e *Engine) {
		e.responder = r
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logSink == nil {
		e.logSink = &slogSink{logger: e.logger}
	}
	return e
}

// Dispatch visits every entry of tree for event, in entry order.
// An event matching no entry is not an error here; check Result.Handled.
// The walk aborts with a RecursionLimitError past MaxDepth and with an
// UnimplementedModeError on a condition mode that cannot be evaluated.
func (e *Engine) Dispatch(ctx context.Context, tree *domain.Tree, event domain.Event) (Result, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	start := time.Now()

	ec := NewEventContext(tree, event)
	logger := e.logger.With("event_id", event.ID, "event_kind", event.Kind)
	logger.Debug("dispatching event", "entries", len(tree.Entries))

	var err error
	for _, ref := range tree.Entries {
		if err = e.visit(ctx, ec, ref); err != nil {
			break
		}
	}

	res := *ec.result
	if err != nil {
		logger.Debug("dispatch aborted", "error", err)
	} else {
		logger.Debug("dispatch completed", "matched", len(res.Matched), "effects", len(res.Effects))
	}

	if e.hooks.OnDispatch != nil {
		e.hooks.OnDispatch(ctx, &domain.DispatchHook{
			HookBase:  domain.HookBase{Timestamp: time.Now(), Type: domain.HookDispatch, EventID: event.ID},
			EventKind: event.Kind,
			Matched:   len(res.Matched),
			Effects:   len(res.Effects),
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	return res, err
}

// Visit runs the subtree rooted at ref within an existing context.
func (e *Engine) Visit(ctx context.Context, ec *EventContext, ref domain.NodeRef) error {
	return e.visit(ctx, ec, ref)
}

// visit runs one node. Depth is restored on every return path.
func (e *Engine) visit(ctx context.Context, ec *EventContext, ref domain.NodeRef) error {
	n := ec.tree.Node(ref)
	if n == nil {
		return nil
	}

	ec.Depth++
	defer func() { ec.Depth-- }()
	if ec.Depth > MaxDepth {
		return &RecursionLimitError{NodeID: n.ID, Limit: MaxDepth}
	}

	e.notify(ctx, e.hooks.OnNodeEnter, domain.HookNodeEnter, ec, n)
	defer e.notify(ctx, e.hooks.OnNodeLeave, domain.HookNodeLeave, ec, n)

	switch n.Kind {
	case domain.KindEntryCommand:
		if ec.event.Kind != domain.EventKindInteractionCreate {
			return nil
		}
		ec.result.Matched = append(ec.result.Matched, n.ID)
		if err := e.visitAll(ctx, ec, n.Options); err != nil {
			return err
		}
		return e.visitAll(ctx, ec, n.Next)

	case domain.KindEntryEvent:
		if n.EventType != ec.event.Kind {
			return nil
		}
		ec.result.Matched = append(ec.result.Matched, n.ID)
		return e.visitAll(ctx, ec, n.Next)

	case domain.KindEntryError:
		e.logger.Debug("error entry visited", "event_id", ec.event.ID, "node_id", n.ID)
		return nil

	case domain.KindCommandOptionText:
		ec.result.Options = append(ec.result.Options, domain.OptionRecord{
			NodeID:      n.ID,
			Name:        n.Name,
			Description: n.Description,
			Required:    n.Required,
		})
		return nil

	case domain.KindActionLog:
		e.logSink.Log(ctx, n.Level, n.Message)
		ec.result.Effects = append(ec.result.Effects, domain.Effect{
			Type:   domain.EffectLog,
			NodeID: n.ID,
			Level:  n.Level,
			Text:   n.Message,
		})
		return e.visitAll(ctx, ec, n.Next)

	case domain.KindActionResponseText:
		if e.responder != nil {
			e.responder.RespondText(ctx, ec.event, n.Text)
		}
		ec.result.Effects = append(ec.result.Effects, domain.Effect{
			Type:   domain.EffectResponseText,
			NodeID: n.ID,
			Text:   n.Text,
		})
		return e.visitAll(ctx, ec, n.Next)

	case domain.KindConditionCompare:
		return e.evaluateCondition(ctx, ec, n)

	case domain.KindConditionItemCompare, domain.KindConditionItemElse:
		return e.visitAll(ctx, ec, n.Next)
	}
	return nil
}

func (e *Engine) visitAll(ctx context.Context, ec *EventContext, refs []domain.NodeRef) error {
	for _, ref := range refs {
		if err := e.visit(ctx, ec, ref); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, fn func(context.Context, *domain.NodeHook), typ domain.HookType, ec *EventContext, n *domain.RuntimeNode) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.NodeHook{
		HookBase: domain.HookBase{Timestamp: time.Now(), Type: typ, EventID: ec.event.ID},
		NodeID:   n.ID,
		Kind:     n.Kind,
		Depth:    ec.Depth,
	})
}

// slogSink forwards log actions to a slog.Logger.
type slogSink struct {
	logger *slog.Logger
}

func (s *slogSink) Log(ctx context.Context, level domain.LogLevel, message string) {
	s.logger.Log(ctx, level.Slog(), message, "source", "flow")
}
