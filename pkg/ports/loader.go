package ports

import "context"

// FlowLoader defines how the engine retrieves the graph source.
// This allows the storage layer (files, redis, memory) to be decoupled.
type FlowLoader interface {
	// LoadFlow returns the raw graph source document and its encoding
	// ("json" or "yaml"). An empty format means JSON.
	// Returns domain.ErrFlowNotFound when no document exists.
	LoadFlow(ctx context.Context) (data []byte, format string, err error)
}

// ConfigSource provides the key-value configuration of the surrounding plugin.
type ConfigSource interface {
	Config(ctx context.Context) (map[string]string, error)
}
