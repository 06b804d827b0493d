package ports

import (
	"context"
	"errors"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// EventSource delivers events one at a time, in arrival order.
type EventSource interface {
	// Next blocks until an event is available.
	// It returns io.EOF once the source is exhausted, or ctx.Err() on cancellation.
	Next(ctx context.Context) (domain.Event, error)
}

// ErrInvalidEvent marks a record a source could read but not decode.
// The stream stays usable: the next call moves past the bad record.
var ErrInvalidEvent = errors.New("invalid event")
