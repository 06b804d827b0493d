package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// DefaultMaxLineSize bounds one input line, terminator included.
const DefaultMaxLineSize = 1024 * 1024

// LineSource implements ports.EventSource over JSON lines.
// Blank lines and lines starting with '#' are skipped. A bare word line is
// read as an event of that kind with no payload. Undecodable and oversized
// lines are reported as ports.ErrInvalidEvent; reading resumes on the next line.
type LineSource struct {
	reader  *bufio.Reader
	maxLine int
	line    int
}

// LineOption configures a LineSource.
type LineOption func(*LineSource)

// WithMaxLineSize overrides DefaultMaxLineSize.
func WithMaxLineSize(n int) LineOption {
	return func(s *LineSource) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

// NewLineSource reads events from r.
func NewLineSource(r io.Reader, opts ...LineOption) *LineSource {
	s := &LineSource{
		reader:  bufio.NewReaderSize(r, 64*1024),
		maxLine: DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next event, io.EOF at end of input.
func (s *LineSource) Next(ctx context.Context) (domain.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Event{}, err
		}
		raw, tooLong, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return domain.Event{}, io.EOF
			}
			return domain.Event{}, fmt.Errorf("failed to read events: %w", err)
		}
		s.line++
		if tooLong {
			return domain.Event{}, fmt.Errorf("line %d: %w: line too long", s.line, ports.ErrInvalidEvent)
		}

		text := strings.TrimSpace(string(raw))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if !strings.HasPrefix(text, "{") {
			return domain.Event{Kind: text}, nil
		}

		var ev domain.Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return domain.Event{}, fmt.Errorf("line %d: %w: %v", s.line, ports.ErrInvalidEvent, err)
		}
		return ev, nil
	}
}

// readLine returns the next line. A line longer than maxLine is consumed up
// to its newline and reported with tooLong set and no content.
// io.EOF is returned only when no byte was left to read.
func (s *LineSource) readLine() (line []byte, tooLong bool, err error) {
	read := false
	for {
		chunk, rerr := s.reader.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		if !tooLong {
			if len(line)+len(chunk) > s.maxLine {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case rerr == nil:
			return line, tooLong, nil
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case errors.Is(rerr, io.EOF) && read:
			return line, tooLong, nil
		default:
			return nil, false, rerr
		}
	}
}

// ResponseWriter implements ports.ResponseSink by writing one JSON line per response.
type ResponseWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewResponseWriter writes responses to w.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{enc: json.NewEncoder(w)}
}

// Respond encodes the response with the event correlation fields.
func (w *ResponseWriter) Respond(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(struct {
		EventID   string `json:"event_id"`
		EventKind string `json:"event_kind"`
		domain.EventResponse
	}{event.ID, event.Kind, resp})
}
