package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow/internal/cli"
	"github.com/aretw0/kiteflow/internal/dto"
	"github.com/aretw0/kiteflow/pkg/adapters/bolt"
	"github.com/aretw0/kiteflow/pkg/domain"
)

const greetYAML = `
nodes:
  - id: e1
    type: entry_event
    data: {event_type: INITIATE}
  - id: a1
    type: action_log
    data: {log_level: warn, log_message: careful}
  - id: r1
    type: action_response_text
    data: {text: hello}
  - id: loop
    type: entry_event
    data: {event_type: LOOP}
  - id: l1
    type: action_log
    data: {log_message: again}
edges:
  - {id: x1, source: e1, target: a1}
  - {id: x2, source: a1, target: r1}
  - {id: x3, source: loop, target: l1}
  - {id: x4, source: l1, target: l1}
`

func writeFlow(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApp(t *testing.T) (*cli.App, *bytes.Buffer) {
	t.Helper()
	var out, errw bytes.Buffer
	app, err := cli.NewApp("", false, &out, &errw)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, &out
}

func TestRun_Stdin(t *testing.T) {
	app, out := newTestApp(t)
	flow := writeFlow(t, "greet.yaml", greetYAML)

	stats, err := cli.Run(context.Background(), app, cli.RunOptions{
		FlowPath: flow,
		In:       strings.NewReader("INITIATE\n{\"kind\": \"UNKNOWN\"}\nnot-json{\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 2, stats.Failed)

	assert.Equal(t, "[warn] careful\nhello\nok INITIATE (e1)\n"+
		"fail no_handler: no handler for event: UNKNOWN\n"+
		"fail no_handler: no handler for event: not-json{\n", out.String())
}

func TestRun_JSONWithJournal(t *testing.T) {
	app, out := newTestApp(t)
	flow := writeFlow(t, "greet.yaml", greetYAML)
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	_, err := cli.Run(context.Background(), app, cli.RunOptions{
		FlowPath: flow,
		JSON:     true,
		Journal:  journalPath,
		In:       strings.NewReader("{\"id\": \"a\", \"kind\": \"INITIATE\"}\n{\"id\": \"b\", \"kind\": \"LOOP\"}\n"),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var first, second dto.DispatchResponse
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "a", first.EventID)
	assert.Len(t, first.Effects, 2)
	assert.Equal(t, domain.CodeRecursionLimit, second.Response.Error.Code)

	journal, err := bolt.Open(journalPath)
	require.NoError(t, err)
	defer journal.Close()
	recs, err := journal.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].EventID)
	assert.False(t, recs[1].Response.Success)
}

func TestRun_JournalsRejectedLines(t *testing.T) {
	app, out := newTestApp(t)
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	stats, err := cli.Run(context.Background(), app, cli.RunOptions{
		FlowPath: writeFlow(t, "greet.yaml", greetYAML),
		Journal:  journalPath,
		In:       strings.NewReader("{broken\n{\"id\": \"ok\", \"kind\": \"INITIATE\"}\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Contains(t, out.String(), "ok INITIATE (e1)")

	journal, err := bolt.Open(journalPath)
	require.NoError(t, err)
	defer journal.Close()
	recs, err := journal.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.NotNil(t, recs[0].Response.Error)
	assert.Equal(t, domain.CodeInvalidEvent, recs[0].Response.Error.Code)
	assert.Equal(t, "ok", recs[1].EventID)
}

func TestRun_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	app, out := newTestApp(t)
	app.Config.Redis.Addr = mr.Addr()
	app.Config.Redis.Drain = true
	ctx := context.Background()

	require.NoError(t, cli.Upload(ctx, app, writeFlow(t, "greet.yaml", greetYAML)))
	assert.True(t, mr.Exists(app.Config.Redis.FlowKey))

	n, err := cli.Publish(ctx, app, strings.NewReader("INITIATE\nMISSING\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := cli.Run(ctx, app, cli.RunOptions{FromRedis: true, Drain: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Contains(t, out.String(), "ok INITIATE (e1)")

	responses, err := app.Redis().Responses(ctx)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.True(t, responses[0].Success)
	assert.Equal(t, domain.CodeNoHandler, responses[1].Error.Code)
}

func TestRedisCommands_RequireAddr(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := cli.Publish(context.Background(), app, strings.NewReader("A\n"))
	assert.Error(t, err)
	assert.Error(t, cli.Upload(context.Background(), app, "flow.json"))

	_, err = cli.Run(context.Background(), app, cli.RunOptions{FromRedis: true})
	assert.ErrorContains(t, err, "--redis requires redis.addr")

	_, err = cli.Run(context.Background(), app, cli.RunOptions{In: strings.NewReader("")})
	assert.ErrorIs(t, err, cli.ErrNoFlow)
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		app, out := newTestApp(t)
		require.NoError(t, cli.Validate(context.Background(), app, writeFlow(t, "greet.yaml", greetYAML), false))
		assert.Contains(t, out.String(), "Flow is valid!")
	})

	t.Run("Errors", func(t *testing.T) {
		app, out := newTestApp(t)
		broken := writeFlow(t, "broken.json", `{
			"nodes": [
				{"id": "e1", "type": "entry_event", "data": {"event_type": "A"}},
				{"id": "c1", "type": "condition_compare"},
				{"id": "i1", "type": "condition_item_compare", "data": {"condition_item_mode": "sounds_like"}}
			],
			"edges": [
				{"id": "x1", "source": "e1", "target": "c1"},
				{"id": "x2", "source": "i1", "target": "c1"}
			]
		}`)

		err := cli.Validate(context.Background(), app, broken, false)
		assert.ErrorContains(t, err, "found 1 errors")
		assert.Contains(t, out.String(), "[error]")
		assert.Contains(t, out.String(), "sounds_like")
	})

	t.Run("JSON", func(t *testing.T) {
		app, out := newTestApp(t)
		require.NoError(t, cli.Validate(context.Background(), app, writeFlow(t, "greet.yaml", greetYAML), true))
		var report struct {
			Issues []json.RawMessage `json:"issues"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Empty(t, report.Issues)
	})
}

func TestGraph(t *testing.T) {
	flow := writeFlow(t, "greet.yaml", greetYAML)

	t.Run("Plain", func(t *testing.T) {
		app, out := newTestApp(t)
		require.NoError(t, cli.Graph(context.Background(), app, flow, nil))
		assert.True(t, strings.HasPrefix(out.String(), "graph TD\n"))
		assert.NotContains(t, out.String(), "classDef")
	})

	t.Run("Traced", func(t *testing.T) {
		app, out := newTestApp(t)
		require.NoError(t, cli.Graph(context.Background(), app, flow, []string{"INITIATE", "LOOP"}))
		body := out.String()
		assert.Contains(t, body, "class e1 visited;")
		assert.Contains(t, body, "class r1 visited;")
		assert.Contains(t, body, "class l1 failed;")
	})
}

func TestEvents(t *testing.T) {
	flow := writeFlow(t, "greet.yaml", greetYAML)

	app, out := newTestApp(t)
	require.NoError(t, cli.Events(context.Background(), app, flow, false))
	assert.Equal(t, "INITIATE\nLOOP\n", out.String())

	app, out = newTestApp(t)
	require.NoError(t, cli.Events(context.Background(), app, flow, true))
	var m dto.Manifest
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	assert.Equal(t, "greet", m.Name)
	assert.Equal(t, []string{"INITIATE", "LOOP"}, m.Events)
}

func TestServeComponents(t *testing.T) {
	app, _ := newTestApp(t)
	flow := writeFlow(t, "greet.yaml", greetYAML)

	eng, handlerOpts, cleanup, err := cli.ServeComponents(context.Background(), app, cli.ServeOptions{
		FlowPath: flow,
		Metrics:  true,
		Journal:  filepath.Join(t.TempDir(), "journal.db"),
	})
	require.NoError(t, err)
	defer cleanup()

	assert.Len(t, handlerOpts, 2, "logger and metrics handler")
	resp := eng.HandleEvent(context.Background(), domain.Event{Kind: "INITIATE"})
	assert.True(t, resp.Success)
}
