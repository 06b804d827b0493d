package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// Publish appends events to the tail of the queue.
func (a *Adapter) Publish(ctx context.Context, events ...domain.Event) error {
	values := make([]any, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		values = append(values, data)
	}
	if len(values) == 0 {
		return nil
	}
	if err := a.client.RPush(ctx, a.queueKey, values...).Err(); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}
	return nil
}

// Next implements ports.EventSource by popping the head of the queue.
// It blocks until an event arrives or ctx ends, unless the adapter drains.
func (a *Adapter) Next(ctx context.Context) (domain.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Event{}, err
		}

		var raw string
		if a.drain {
			val, err := a.client.LPop(ctx, a.queueKey).Result()
			if errors.Is(err, backend.Nil) {
				return domain.Event{}, io.EOF
			}
			if err != nil {
				return domain.Event{}, fmt.Errorf("failed to pop event: %w", err)
			}
			raw = val
		} else {
			res, err := a.client.BLPop(ctx, a.block, a.queueKey).Result()
			if errors.Is(err, backend.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return domain.Event{}, ctx.Err()
				}
				return domain.Event{}, fmt.Errorf("failed to pop event: %w", err)
			}
			// BLPOP replies with [key, value].
			raw = res[1]
		}

		var ev domain.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return domain.Event{}, fmt.Errorf("%w: failed to decode event: %v", ports.ErrInvalidEvent, err)
		}
		return ev, nil
	}
}

// responseRecord is the JSON written to the response list.
type responseRecord struct {
	EventID   string               `json:"event_id"`
	EventKind string               `json:"event_kind"`
	Response  domain.EventResponse `json:"response"`
}

// Respond implements ports.ResponseSink by appending to the response list.
func (a *Adapter) Respond(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
	data, err := json.Marshal(responseRecord{EventID: event.ID, EventKind: event.Kind, Response: resp})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := a.client.RPush(ctx, a.responseKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push response: %w", err)
	}
	return nil
}

// Responses returns the responses recorded so far, oldest first.
func (a *Adapter) Responses(ctx context.Context) ([]domain.EventResponse, error) {
	vals, err := a.client.LRange(ctx, a.responseKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read responses: %w", err)
	}
	out := make([]domain.EventResponse, 0, len(vals))
	for _, v := range vals {
		var rec responseRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		out = append(out, rec.Response)
	}
	return out, nil
}
