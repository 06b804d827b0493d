package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// Dispatcher is the part of the Engine the runner drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) (kiteflow.Result, domain.EventResponse)
}

// Observer is notified after each dispatch.
type Observer func(ctx context.Context, event domain.Event, res kiteflow.Result, resp domain.EventResponse)

// Stats counts what one Run did.
type Stats struct {
	Processed int
	Failed    int
	Skipped   int
}

// Runner pulls events from a source and dispatches them sequentially.
type Runner struct {
	// Logger is used for internal logging. If nil, a no-op logger is used.
	Logger *slog.Logger

	// Locker, when set, is held around every dispatch.
	Locker  ports.DistributedLocker
	LockKey string
	LockTTL time.Duration

	// Observer receives every dispatch outcome.
	Observer Observer

	// MaxEvents stops the loop after that many events. Zero means no limit.
	MaxEvents int

	// Sanitize validates events before dispatch. Defaults to SanitizeEvent.
	Sanitize func(domain.Event) (domain.Event, error)

	// Rejections, when set, receives an invalid_event failure for every
	// event skipped before dispatch.
	Rejections ports.ResponseSink
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		LockKey:  DefaultLockKey,
		LockTTL:  DefaultLockTTL,
		Sanitize: SanitizeEvent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run dispatches events from src until it is exhausted or ctx is cancelled;
// both end the loop without error. Source failures other than
// ports.ErrInvalidEvent are returned.
func (r *Runner) Run(ctx context.Context, eng Dispatcher, src ports.EventSource) (Stats, error) {
	var stats Stats

	for r.MaxEvents == 0 || stats.Processed < r.MaxEvents {
		event, err := src.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			r.Logger.Debug("event source exhausted", "processed", stats.Processed)
			return stats, nil
		case ctx.Err() != nil:
			r.Logger.Debug("runner stopped", "processed", stats.Processed, "reason", ctx.Err())
			return stats, nil
		case errors.Is(err, ports.ErrInvalidEvent):
			stats.Skipped++
			r.Logger.Warn("skipping undecodable event", "error", err)
			r.reject(ctx, domain.Event{}, err)
			continue
		default:
			return stats, fmt.Errorf("event source failed: %w", err)
		}

		if r.Sanitize != nil {
			clean, err := r.Sanitize(event)
			if err != nil {
				stats.Skipped++
				r.Logger.Warn("event rejected", "event_id", event.ID, "error", err)
				r.reject(ctx, event, err)
				continue
			}
			event = clean
		}

		resp, err := r.dispatch(ctx, eng, event)
		if err != nil {
			if ctx.Err() != nil {
				return stats, nil
			}
			return stats, err
		}
		stats.Processed++
		if !resp.Success {
			stats.Failed++
		}
	}
	return stats, nil
}

// reject reports a skipped event. Events without an id get one so the
// failure can still be correlated.
func (r *Runner) reject(ctx context.Context, event domain.Event, cause error) {
	if r.Rejections == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	resp := domain.EventFailure(domain.CodeInvalidEvent, cause.Error())
	if err := r.Rejections.Respond(ctx, event, resp); err != nil {
		r.Logger.Error("failed to send response", "event_id", event.ID, "error", err)
	}
}

func (r *Runner) dispatch(ctx context.Context, eng Dispatcher, event domain.Event) (domain.EventResponse, error) {
	if r.Locker != nil {
		unlock, err := r.Locker.Lock(ctx, r.LockKey, r.LockTTL)
		if err != nil {
			return domain.EventResponse{}, fmt.Errorf("failed to acquire dispatch lock: %w", err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				r.Logger.Error("failed to release dispatch lock", "key", r.LockKey, "error", err)
			}
		}()
	}

	res, resp := eng.Dispatch(ctx, event)
	r.Logger.Debug("event dispatched", "event_id", res.EventID, "event_kind", event.Kind, "success", resp.Success)
	if r.Observer != nil {
		r.Observer(ctx, event, res, resp)
	}
	return resp, nil
}
