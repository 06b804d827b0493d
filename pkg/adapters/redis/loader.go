package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// LoadFlow implements ports.FlowLoader with a GET on the flow key.
// The document is expected to be JSON.
func (a *Adapter) LoadFlow(ctx context.Context) ([]byte, string, error) {
	data, err := a.client.Get(ctx, a.flowKey).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, "", fmt.Errorf("%w: key %s", domain.ErrFlowNotFound, a.flowKey)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get flow: %w", err)
	}
	return data, "json", nil
}

// StoreFlow writes a JSON graph source under the flow key.
func (a *Adapter) StoreFlow(ctx context.Context, data []byte) error {
	if err := a.client.Set(ctx, a.flowKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set flow: %w", err)
	}
	return nil
}

// Config implements ports.ConfigSource with an HGETALL on the config key.
// A missing key yields an empty configuration.
func (a *Adapter) Config(ctx context.Context) (map[string]string, error) {
	cfg, err := a.client.HGetAll(ctx, a.configKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}
