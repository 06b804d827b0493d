package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/pkg/adapters/memory"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/dsl"
)

func pingFlow() *dsl.Builder {
	b := dsl.New()

	b.Add("start").OnEvent("MESSAGE_CREATE").Go("check")
	b.Add("check").Condition("{{event.content}}")
	b.Add("is_ping").When(domain.CompareModeEqual, "ping").Of("check").Go("reply")
	b.Add("other").Else().Of("check").Go("warn")
	b.Add("reply").Text("pong")
	b.Add("warn").Log("warn", "unexpected message")

	b.Add("cmd").OnCommand("ping", "replies pong").Go("reply")
	b.Add("who").Option("who", "who to ping", true).Of("cmd")
	return b
}

func TestBuilder_Flow(t *testing.T) {
	flow := pingFlow().Flow()

	ids := make([]string, 0, len(flow.Nodes))
	for _, n := range flow.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"start", "check", "is_ping", "other", "reply", "warn", "cmd", "who"}, ids)

	require.Len(t, flow.Edges, 7)
	assert.Equal(t, "start", flow.Edges[0].Source)
	assert.Equal(t, "check", flow.Edges[0].Target)
	// Membership edges run from the item to its condition.
	assert.Equal(t, "is_ping", flow.Edges[1].Source)
	assert.Equal(t, "check", flow.Edges[1].Target)

	seen := map[string]bool{}
	for _, e := range flow.Edges {
		assert.False(t, seen[e.ID], "edge ids are unique")
		seen[e.ID] = true
	}
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := dsl.New()
	first := b.Add("a").Text("one")
	again := b.Add("a")

	assert.Same(t, first, again)
	assert.Len(t, b.Flow().Nodes, 1)
	assert.Equal(t, "one", again.Build().Data.Text)
}

func TestBuilder_RejectsUntypedNodes(t *testing.T) {
	b := dsl.New()
	b.Add("start").OnEvent("INITIATE").Go("missing")
	b.Add("missing")

	_, err := b.Build()
	assert.ErrorContains(t, err, "node 'missing' has no type")
}

func TestBuilder_RunsInEngine(t *testing.T) {
	loader, err := pingFlow().Build()
	require.NoError(t, err)

	logs := memory.NewLogRecorder()
	texts := memory.NewTextRecorder()
	eng, err := kiteflow.New(loader, kiteflow.WithLogSink(logs), kiteflow.WithTextResponder(texts))
	require.NoError(t, err)
	ctx := context.Background()

	resp := eng.HandleEvent(ctx, domain.Event{Kind: "MESSAGE_CREATE", Payload: []byte(`{"content": "ping"}`)})
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"pong"}, texts.Texts())

	resp = eng.HandleEvent(ctx, domain.Event{Kind: "MESSAGE_CREATE", Payload: []byte(`{"content": "hello"}`)})
	assert.True(t, resp.Success)
	assert.Equal(t, []memory.LogRecord{{Level: domain.LogLevelWarn, Message: "unexpected message"}}, logs.Records())

	specs := eng.Commands()
	require.Len(t, specs, 1)
	assert.Equal(t, "ping", specs[0].Name)
	require.Len(t, specs[0].Options, 1)
	assert.True(t, specs[0].Options[0].Required)
}

func TestBuilder_AllowMultiple(t *testing.T) {
	b := dsl.New()
	b.Add("start").OnEvent("MESSAGE_CREATE").Go("check")
	b.Add("check").Condition("{{event.content}}").AllowMultiple()
	b.Add("has_h").When(domain.CompareModeStartsWith, "h").Of("check").Go("a")
	b.Add("has_o").When(domain.CompareModeEndsWith, "o").Of("check").Go("b")
	b.Add("a").Text("starts")
	b.Add("b").Text("ends")

	loader, err := b.Build()
	require.NoError(t, err)
	texts := memory.NewTextRecorder()
	eng, err := kiteflow.New(loader, kiteflow.WithTextResponder(texts))
	require.NoError(t, err)

	eng.HandleEvent(context.Background(), domain.Event{Kind: "MESSAGE_CREATE", Payload: []byte(`{"content": "hello"}`)})
	assert.Equal(t, []string{"starts", "ends"}, texts.Texts())
}

func TestBuilder_NestedConditionThroughAction(t *testing.T) {
	b := dsl.New()
	b.Add("start").OnEvent("MESSAGE_CREATE").Go("outer")
	b.Add("outer").Condition("{{event.channel}}")
	b.Add("in_general").When(domain.CompareModeEqual, "general").Of("outer").Go("note")
	b.Add("note").Log("debug", "general channel").Go("inner")
	b.Add("inner").Condition("{{event.content}}")
	b.Add("is_ping").When(domain.CompareModeEqual, "ping").Of("inner").Go("reply")
	b.Add("reply").Text("pong")

	loader, err := b.Build()
	require.NoError(t, err)
	texts := memory.NewTextRecorder()
	eng, err := kiteflow.New(loader, kiteflow.WithLogSink(memory.NewLogRecorder()), kiteflow.WithTextResponder(texts))
	require.NoError(t, err)

	eng.HandleEvent(context.Background(), domain.Event{Kind: "MESSAGE_CREATE", Payload: []byte(`{"channel": "general", "content": "ping"}`)})
	assert.Equal(t, []string{"pong"}, texts.Texts())
}
