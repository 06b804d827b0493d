package ports

import (
	"context"
	"errors"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// LogSink receives the records emitted by log actions.
// Calls are fire-and-forget.
type LogSink interface {
	Log(ctx context.Context, level domain.LogLevel, message string)
}

// TextResponder receives the text emitted by response actions.
// Calls are fire-and-forget.
type TextResponder interface {
	RespondText(ctx context.Context, event domain.Event, text string)
}

// ResponseSink receives exactly one response per dispatched event.
type ResponseSink interface {
	Respond(ctx context.Context, event domain.Event, resp domain.EventResponse) error
}

// LogSinkFunc adapts a function to LogSink.
type LogSinkFunc func(ctx context.Context, level domain.LogLevel, message string)

func (f LogSinkFunc) Log(ctx context.Context, level domain.LogLevel, message string) {
	f(ctx, level, message)
}

// ResponseSinkFunc adapts a function to ResponseSink.
type ResponseSinkFunc func(ctx context.Context, event domain.Event, resp domain.EventResponse) error

func (f ResponseSinkFunc) Respond(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
	return f(ctx, event, resp)
}

// TeeResponseSink forwards every response to each non-nil sink in order.
// All sinks are called; their errors are joined.
func TeeResponseSink(sinks ...ResponseSink) ResponseSink {
	var active []ResponseSink
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return ResponseSinkFunc(func(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
		var errs []error
		for _, s := range active {
			if err := s.Respond(ctx, event, resp); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
