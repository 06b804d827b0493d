package runner

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow/pkg/domain"
)

func TestSanitizeEvent(t *testing.T) {
	tests := []struct {
		name    string
		in      domain.Event
		want    domain.Event
		wantErr error
	}{
		{"Plain", domain.Event{Kind: "MESSAGE_CREATE"}, domain.Event{Kind: "MESSAGE_CREATE"}, nil},
		{"Trimmed Kind", domain.Event{Kind: " INITIATE\n"}, domain.Event{Kind: "INITIATE"}, nil},
		{"ANSI Code", domain.Event{ID: "a\x1b1", Kind: "\x1b[31mRED"}, domain.Event{ID: "a1", Kind: "[31mRED"}, nil},
		{"Empty Kind", domain.Event{Kind: "\x00"}, domain.Event{}, ErrEmptyKind},
		{"Invalid UTF8", domain.Event{Kind: "\xff"}, domain.Event{}, ErrInvalidUTF8},
		{"Invalid Payload", domain.Event{Kind: "A", Payload: json.RawMessage(`{`)}, domain.Event{}, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeEvent(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeEvent_SizeLimit(t *testing.T) {
	t.Setenv(EnvMaxPayloadSize, "16")

	payload := func(n int) json.RawMessage {
		return json.RawMessage(`"` + strings.Repeat("a", n-2) + `"`)
	}

	_, err := SanitizeEvent(domain.Event{Kind: "A", Payload: payload(16)})
	assert.NoError(t, err, "exact limit")

	_, err = SanitizeEvent(domain.Event{Kind: "A", Payload: payload(17)})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}
