package ports

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// RunEventSourceContract verifies that an EventSource delivers want in order
// and then reports io.EOF.
func RunEventSourceContract(t *testing.T, src EventSource, want []domain.Event) {
	t.Helper()
	ctx := context.Background()

	t.Run("Ordered Delivery", func(t *testing.T) {
		for i, expected := range want {
			got, err := src.Next(ctx)
			require.NoErrorf(t, err, "event %d", i)
			assert.Equal(t, expected.Kind, got.Kind)
			assert.JSONEq(t, payloadOrNull(expected.Payload), payloadOrNull(got.Payload))
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		_, err := src.Next(ctx)
		assert.True(t, errors.Is(err, io.EOF), "expected io.EOF, got %v", err)
	})
}

// RunConfigSourceContract verifies that a ConfigSource returns want.
func RunConfigSourceContract(t *testing.T, src ConfigSource, want map[string]string) {
	t.Helper()

	cfg, err := src.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, cfg)

	// A second read must be stable.
	again, err := src.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func payloadOrNull(p []byte) string {
	if len(p) == 0 {
		return "null"
	}
	return string(p)
}
