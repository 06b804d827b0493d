package memory

import (
	"context"
	"sync"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// LogRecord is one record captured by LogRecorder.
type LogRecord struct {
	Level   domain.LogLevel
	Message string
}

// LogRecorder implements ports.LogSink by keeping records in memory.
// Safe for concurrent use.
type LogRecorder struct {
	mu      sync.RWMutex
	records []LogRecord
}

// NewLogRecorder creates an empty LogRecorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

// Log stores the record.
func (r *LogRecorder) Log(ctx context.Context, level domain.LogLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, LogRecord{Level: level, Message: message})
}

// Records returns a copy of the captured records.
func (r *LogRecorder) Records() []LogRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LogRecord(nil), r.records...)
}

// TextRecorder implements ports.TextResponder by keeping texts in memory.
type TextRecorder struct {
	mu    sync.RWMutex
	texts []string
}

// NewTextRecorder creates an empty TextRecorder.
func NewTextRecorder() *TextRecorder {
	return &TextRecorder{}
}

// RespondText stores the text.
func (r *TextRecorder) RespondText(ctx context.Context, event domain.Event, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

// Texts returns a copy of the captured texts.
func (r *TextRecorder) Texts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.texts...)
}

// ResponseRecord pairs an event with the response sent for it.
type ResponseRecord struct {
	Event    domain.Event
	Response domain.EventResponse
}

// ResponseRecorder implements ports.ResponseSink by keeping responses in memory.
type ResponseRecorder struct {
	mu        sync.RWMutex
	responses []ResponseRecord
}

// NewResponseRecorder creates an empty ResponseRecorder.
func NewResponseRecorder() *ResponseRecorder {
	return &ResponseRecorder{}
}

// Respond stores the response.
func (r *ResponseRecorder) Respond(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, ResponseRecord{Event: event, Response: resp})
	return nil
}

// Responses returns a copy of the captured responses.
func (r *ResponseRecorder) Responses() []ResponseRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ResponseRecord(nil), r.responses...)
}
