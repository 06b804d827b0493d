package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/kiteflow/pkg/domain"
)

var (
	// DefaultMaxPayloadSize is 64KB
	DefaultMaxPayloadSize = 64 * 1024
	// EnvMaxPayloadSize is the environment variable to override the default
	EnvMaxPayloadSize = "KITEFLOW_MAX_PAYLOAD_SIZE"
)

var (
	ErrEmptyKind       = errors.New("event kind is empty")
	ErrPayloadTooLarge = errors.New("payload exceeds maximum allowed size")
	ErrInvalidUTF8     = errors.New("event contains invalid UTF-8 sequences")
	ErrInvalidPayload  = errors.New("payload is not valid JSON")
)

// SanitizeEvent enforces the payload size limit, validates UTF-8 and
// JSON, and strips control characters and surrounding space from the kind.
func SanitizeEvent(ev domain.Event) (domain.Event, error) {
	limit := getMaxPayloadSize()
	if len(ev.Payload) > limit {
		// Rejected rather than truncated.
		return ev, fmt.Errorf("%w: size=%d limit=%d", ErrPayloadTooLarge, len(ev.Payload), limit)
	}
	if !utf8.ValidString(ev.Kind) || !utf8.Valid(ev.Payload) {
		return ev, ErrInvalidUTF8
	}
	if len(ev.Payload) > 0 && !json.Valid(ev.Payload) {
		return ev, ErrInvalidPayload
	}

	ev.Kind = strings.TrimSpace(stripControl(ev.Kind))
	if ev.Kind == "" {
		return ev, ErrEmptyKind
	}
	ev.ID = stripControl(ev.ID)
	return ev, nil
}

func stripControl(s string) string {
	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func getMaxPayloadSize() int {
	if val := os.Getenv(EnvMaxPayloadSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxPayloadSize
}
