package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// LoggingHooks returns hooks that trace the walk on logger at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, h *domain.NodeHook) {
			logger.DebugContext(ctx, "node_enter", "event_id", h.EventID, "node_id", h.NodeID, "kind", h.Kind.String(), "depth", h.Depth)
		},
		OnNodeLeave: func(ctx context.Context, h *domain.NodeHook) {
			logger.DebugContext(ctx, "node_leave", "event_id", h.EventID, "node_id", h.NodeID)
		},
		OnDispatch: func(ctx context.Context, h *domain.DispatchHook) {
			attrs := []any{"event_id", h.EventID, "event_kind", h.EventKind, "matched", h.Matched, "effects", h.Effects, "duration", h.Duration}
			if h.Err != nil {
				logger.WarnContext(ctx, "dispatch failed", append(attrs, "error", h.Err)...)
				return
			}
			logger.DebugContext(ctx, "dispatch", attrs...)
		},
	}
}

// Chain combines hook sets. Callbacks run in argument order; nil callbacks are skipped.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var enter, leave []func(context.Context, *domain.NodeHook)
	var dispatch []func(context.Context, *domain.DispatchHook)
	for _, h := range hooks {
		if h.OnNodeEnter != nil {
			enter = append(enter, h.OnNodeEnter)
		}
		if h.OnNodeLeave != nil {
			leave = append(leave, h.OnNodeLeave)
		}
		if h.OnDispatch != nil {
			dispatch = append(dispatch, h.OnDispatch)
		}
	}

	var out domain.LifecycleHooks
	if len(enter) > 0 {
		out.OnNodeEnter = func(ctx context.Context, h *domain.NodeHook) {
			for _, fn := range enter {
				fn(ctx, h)
			}
		}
	}
	if len(leave) > 0 {
		out.OnNodeLeave = func(ctx context.Context, h *domain.NodeHook) {
			for _, fn := range leave {
				fn(ctx, h)
			}
		}
	}
	if len(dispatch) > 0 {
		out.OnDispatch = func(ctx context.Context, h *domain.DispatchHook) {
			for _, fn := range dispatch {
				fn(ctx, h)
			}
		}
	}
	return out
}
