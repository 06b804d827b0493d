package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// Loader implements ports.FlowLoader over an in-memory document.
type Loader struct {
	data   []byte
	format string
}

// NewLoader creates a Loader serving raw JSON.
func NewLoader(raw string) *Loader {
	return &Loader{data: []byte(raw), format: "json"}
}

// NewLoaderFormat creates a Loader serving raw in the given format.
func NewLoaderFormat(raw []byte, format string) *Loader {
	return &Loader{data: raw, format: format}
}

// NewFromFlow creates a Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromFlow(flow domain.FlowData) (*Loader, error) {
	for _, n := range flow.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node missing ID")
		}
	}
	bytes, err := json.Marshal(flow)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow: %w", err)
	}
	return &Loader{data: bytes, format: "json"}, nil
}

// LoadFlow returns the stored document.
func (l *Loader) LoadFlow(ctx context.Context) ([]byte, string, error) {
	if l.data == nil {
		return nil, "", domain.ErrFlowNotFound
	}
	return l.data, l.format, nil
}

// StaticConfig implements ports.ConfigSource over a fixed map.
type StaticConfig map[string]string

// Config returns a copy of the map.
func (c StaticConfig) Config(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out, nil
}
