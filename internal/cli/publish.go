package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/kiteflow/pkg/adapters/file"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/runner"
)

var errNoRedis = errors.New("redis.addr is not configured")

// Publish pushes the JSON-lines events read from in onto the redis queue.
func Publish(ctx context.Context, app *App, in io.Reader) (int, error) {
	adapter := app.Redis()
	if adapter == nil {
		return 0, errNoRedis
	}

	src := file.NewLineSource(in)
	var batch []domain.Event
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if ev, err = runner.SanitizeEvent(ev); err != nil {
			return 0, err
		}
		batch = append(batch, ev)
	}

	if err := adapter.Publish(ctx, batch...); err != nil {
		return 0, err
	}
	app.Logger.Info("events published", "count", len(batch), "queue", app.Config.Redis.QueueKey)
	return len(batch), nil
}

// Upload parses the flow at flowPath and stores it, as JSON, under the redis flow key.
func Upload(ctx context.Context, app *App, flowPath string) error {
	adapter := app.Redis()
	if adapter == nil {
		return errNoRedis
	}
	if flowPath == "" {
		return ErrNoFlow
	}

	flow, err := ReadFlow(ctx, app, flowPath)
	if err != nil {
		return err
	}
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to encode flow: %w", err)
	}
	if err := adapter.StoreFlow(ctx, data); err != nil {
		return err
	}
	app.Logger.Info("flow uploaded", "key", app.Config.Redis.FlowKey, "nodes", len(flow.Nodes))
	return nil
}
