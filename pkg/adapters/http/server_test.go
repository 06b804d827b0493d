package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/internal/dto"
	"github.com/aretw0/kiteflow/internal/logging"
	"github.com/aretw0/kiteflow/pkg/adapters/memory"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/observability"
)

const flow = `{
	"nodes": [
		{"id": "e1", "type": "entry_event", "data": {"event_type": "MESSAGE_CREATE"}},
		{"id": "c1", "type": "condition_compare", "data": {"condition_base_value": "{{event.content}}"}},
		{"id": "i1", "type": "condition_item_compare", "data": {"condition_item_mode": "equal", "condition_item_value": "ping"}},
		{"id": "r1", "type": "action_response_text", "data": {"text": "pong"}},
		{"id": "loop", "type": "entry_event", "data": {"event_type": "LOOP"}},
		{"id": "l1", "type": "action_log", "data": {"log_message": "again"}}
	],
	"edges": [
		{"id": "x1", "source": "e1", "target": "c1"},
		{"id": "x2", "source": "i1", "target": "c1"},
		{"id": "x3", "source": "i1", "target": "r1"},
		{"id": "x4", "source": "loop", "target": "l1"},
		{"id": "x5", "source": "l1", "target": "l1"}
	]
}`

func newTestHandler(t *testing.T, opts ...kiteflow.Option) http.Handler {
	t.Helper()
	opts = append([]kiteflow.Option{
		kiteflow.WithLogSink(memory.NewLogRecorder()),
		kiteflow.WithTextResponder(memory.NewTextRecorder()),
	}, opts...)
	eng, err := kiteflow.New(memory.NewLoader(flow), opts...)
	require.NoError(t, err)
	return NewHandler(eng, WithLogger(logging.NewNop()))
}

func postEvent(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, dto.DispatchResponse) {
	t.Helper()
	req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out dto.DispatchResponse
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestPostEvent(t *testing.T) {
	h := newTestHandler(t)

	t.Run("Handled", func(t *testing.T) {
		w, out := postEvent(t, h, `{"id": "m1", "kind": "MESSAGE_CREATE", "payload": {"content": "ping"}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "m1", out.EventID)
		assert.True(t, out.Response.Success)
		assert.Equal(t, []string{"e1"}, out.Matched)
		require.Len(t, out.Effects, 1)
		assert.Equal(t, domain.EffectResponseText, out.Effects[0].Type)
		assert.Equal(t, "pong", out.Effects[0].Text)
	})

	t.Run("Condition Not Met", func(t *testing.T) {
		w, out := postEvent(t, h, `{"kind": "MESSAGE_CREATE", "payload": {"content": "hello"}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, out.EventID)
		assert.Empty(t, out.Effects)
	})

	t.Run("No Handler", func(t *testing.T) {
		w, out := postEvent(t, h, `{"kind": "GUILD_CREATE"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, out.Response.Error)
		assert.Equal(t, domain.CodeNoHandler, out.Response.Error.Code)
	})

	t.Run("Recursion Limit", func(t *testing.T) {
		w, out := postEvent(t, h, `{"kind": "LOOP"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, out.Response.Error)
		assert.Equal(t, domain.CodeRecursionLimit, out.Response.Error.Code)
	})

	t.Run("Bad Requests", func(t *testing.T) {
		w, _ := postEvent(t, h, `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = postEvent(t, h, `{"payload": {}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "event kind is required")
	})
}

func TestGetManifest(t *testing.T) {
	h := newTestHandler(t, kiteflow.WithName("demo"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/events", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var m dto.Manifest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "demo", m.Name)
	assert.Equal(t, []string{"LOOP", "MESSAGE_CREATE"}, m.Events)
}

func TestGetGraph(t *testing.T) {
	h := newTestHandler(t)

	t.Run("Mermaid", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/graph?visited=e1,c1&failed=r1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "graph TD\n"))
		assert.Contains(t, body, "class e1 visited")
		assert.Contains(t, body, "class r1 failed")
	})

	t.Run("JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/graph?format=json", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got domain.FlowData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Nodes, 6)
		assert.Len(t, got.Edges, 5)
	})
}

func TestGetHealth(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/events", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	eng, err := kiteflow.New(memory.NewLoader(flow),
		kiteflow.WithLogSink(memory.NewLogRecorder()),
		kiteflow.WithLifecycleHooks(metrics.Hooks()),
	)
	require.NoError(t, err)
	h := NewHandler(eng,
		WithLogger(logging.NewNop()),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	postEvent(t, h, `{"kind": "GUILD_CREATE"}`)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `kiteflow_dispatches_total{event_kind="GUILD_CREATE",outcome="unhandled"} 1`)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	h := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", h, logging.NewNop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
