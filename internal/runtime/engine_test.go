package runtime_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiteflow/internal/compiler"
	"github.com/aretw0/kiteflow/internal/runtime"
	"github.com/aretw0/kiteflow/pkg/adapters/memory"
	"github.com/aretw0/kiteflow/pkg/domain"
)

func compile(t *testing.T, flow domain.FlowData) *domain.Tree {
	t.Helper()
	tree, err := compiler.NewBuilder().Build(&flow)
	require.NoError(t, err)
	return tree
}

func edges(pairs ...string) []domain.Edge {
	var out []domain.Edge
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Edge{ID: pairs[i] + "-" + pairs[i+1], Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

type mockLogSink struct {
	mock.Mock
}

func (m *mockLogSink) Log(ctx context.Context, level domain.LogLevel, message string) {
	m.Called(level, message)
}

func TestDispatch_EndToEnd(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{
			{ID: "e1", Type: domain.NodeTypeEntryEvent, Data: domain.NodeData{EventType: "INITIATE"}},
			{ID: "a1", Type: domain.NodeTypeActionLog, Data: domain.NodeData{LogLevel: "info", LogMessage: "hi"}},
		},
		Edges: edges("e1", "a1"),
	})

	sink := new(mockLogSink)
	sink.On("Log", domain.LogLevelInfo, "hi").Once()

	engine := runtime.NewEngine(runtime.WithLogSink(sink))
	res, err := engine.Dispatch(context.Background(), tree, domain.Event{Kind: "INITIATE"})
	require.NoError(t, err)

	sink.AssertExpectations(t)
	sink.AssertNumberOfCalls(t, "Log", 1)
	assert.Equal(t, []string{"e1"}, res.Matched)
	assert.Equal(t, []domain.Effect{{Type: domain.EffectLog, NodeID: "a1", Level: domain.LogLevelInfo, Text: "hi"}}, res.Effects)
	assert.NotEmpty(t, res.EventID, "an id is assigned when the event has none")
}

func TestDispatch_EntryKindGating(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{
			{ID: "e", Type: domain.NodeTypeEntryEvent, Data: domain.NodeData{EventType: "FOO"}},
			{ID: "a", Type: domain.NodeTypeActionResponseText, Data: domain.NodeData{Text: "foo!"}},
		},
		Edges: edges("e", "a"),
	})

	texts := memory.NewTextRecorder()
	engine := runtime.NewEngine(runtime.WithTextResponder(texts))

	res, err := engine.Dispatch(context.Background(), tree, domain.Event{Kind: "BAR"})
	require.NoError(t, err)
	assert.False(t, res.Handled())
	assert.Empty(t, res.Effects)
	assert.Empty(t, texts.Texts())

	res, err = engine.Dispatch(context.Background(), tree, domain.Event{Kind: "FOO"})
	require.NoError(t, err)
	assert.True(t, res.Handled())
	assert.Equal(t, []string{"foo!"}, texts.Texts())
}

func TestDispatch_CommandEntry(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{
			{ID: "cmd", Type: domain.NodeTypeEntryCommand, Data: domain.NodeData{Name: "ping"}},
			{ID: "o1", Type: domain.NodeTypeOptionText, Data: domain.NodeData{Name: "target", Description: "who", Required: true}},
			{ID: "o2", Type: domain.NodeTypeOptionText, Data: domain.NodeData{Name: "reason"}},
			{ID: "r", Type: domain.NodeTypeActionResponseText, Data: domain.NodeData{Text: "pong"}},
		},
		Edges: edges("o1", "cmd", "o2", "cmd", "cmd", "r"),
	})
	engine := runtime.NewEngine()

	res, err := engine.Dispatch(context.Background(), tree, domain.Event{Kind: "MESSAGE_CREATE"})
	require.NoError(t, err)
	assert.False(t, res.Handled())

	res, err = engine.Dispatch(context.Background(), tree, domain.Event{Kind: domain.EventKindInteractionCreate})
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd"}, res.Matched)
	assert.Equal(t, []domain.OptionRecord{
		{NodeID: "o1", Name: "target", Description: "who", Required: true},
		{NodeID: "o2", Name: "reason"},
	}, res.Options)
	require.Len(t, res.Effects, 1)
	assert.Equal(t, "pong", res.Effects[0].Text)
}

func TestDispatch_ErrorEntryIsNotAHandler(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{{ID: "err", Type: domain.NodeTypeEntryError}},
	})

	res, err := runtime.NewEngine().Dispatch(context.Background(), tree, domain.Event{Kind: "ANY"})
	require.NoError(t, err)
	assert.False(t, res.Handled())
	assert.Empty(t, res.Effects)
}

func TestDispatch_RecursionLimit(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{
			{ID: "e", Type: domain.NodeTypeEntryEvent, Data: domain.NodeData{EventType: "LOOP"}},
			{ID: "A", Type: domain.NodeTypeActionLog, Data: domain.NodeData{LogMessage: "a"}},
			{ID: "B", Type: domain.NodeTypeActionLog, Data: domain.NodeData{LogMessage: "b"}},
		},
		Edges: edges("e", "A", "A", "B", "B", "A"),
	})

	logs := memory.NewLogRecorder()
	engine := runtime.NewEngine(runtime.WithLogSink(logs))

	res, err := engine.Dispatch(context.Background(), tree, domain.Event{Kind: "LOOP"})
	require.Error(t, err)
	assert.ErrorIs(t, err, runtime.ErrRecursionLimit)

	var limitErr *runtime.RecursionLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, runtime.MaxDepth, limitErr.Limit)

	// Entry at depth 1, then 99 log actions before the ceiling trips.
	assert.Len(t, logs.Records(), runtime.MaxDepth-1)
	assert.Len(t, res.Effects, runtime.MaxDepth-1)

	// The same engine keeps serving other events.
	res, err = engine.Dispatch(context.Background(), tree, domain.Event{Kind: "OTHER"})
	require.NoError(t, err)
	assert.False(t, res.Handled())
}

func TestVisit_DepthSymmetry(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{
			{ID: "cmd", Type: domain.NodeTypeEntryCommand},
			{ID: "opt", Type: domain.NodeTypeOptionText},
			{ID: "e", Type: domain.NodeTypeEntryEvent, Data: domain.NodeData{EventType: domain.EventKindInteractionCreate}},
			{ID: "err", Type: domain.NodeTypeEntryError},
			{ID: "log", Type: domain.NodeTypeActionLog},
			{ID: "txt", Type: domain.NodeTypeActionResponseText},
			{ID: "c", Type: domain.NodeTypeConditionCompare, Data: domain.NodeData{ConditionBaseValue: "x"}},
			{ID: "i", Type: domain.NodeTypeConditionItemCompare, Data: domain.NodeData{ConditionItemMode: domain.CompareModeEqual, ConditionItemValue: "y"}},
			{ID: "else", Type: domain.NodeTypeConditionItemElse},
			{ID: "loop1", Type: domain.NodeTypeActionLog},
			{ID: "loop2", Type: domain.NodeTypeActionLog},
		},
		Edges: edges("opt", "cmd", "cmd", "log", "log", "txt", "txt", "c", "i", "c", "else", "c", "else", "log", "e", "loop1", "loop1", "loop2", "loop2", "loop1"),
	})
	engine := runtime.NewEngine()
	event := domain.Event{ID: "evt", Kind: domain.EventKindInteractionCreate}

	for _, id := range []string{"cmd", "opt", "err", "log", "txt", "c", "i", "else", "e", "loop1"} {
		t.Run(id, func(t *testing.T) {
			ref, ok := tree.Lookup(id)
			require.True(t, ok)

			ec := runtime.NewEventContext(tree, event)
			ec.Depth = 7
			_ = engine.Visit(context.Background(), ec, ref)
			assert.Equal(t, 7, ec.Depth)
		})
	}
}

func TestDispatch_Hooks(t *testing.T) {
	tree := compile(t, domain.FlowData{
		Nodes: []domain.Node{
			{ID: "e", Type: domain.NodeTypeEntryEvent, Data: domain.NodeData{EventType: "GO"}},
			{ID: "a", Type: domain.NodeTypeActionLog},
		},
		Edges: edges("e", "a"),
	})

	var entered, left []string
	var depths []int
	var dispatched *domain.DispatchHook
	engine := runtime.NewEngine(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, h *domain.NodeHook) {
			entered = append(entered, h.NodeID)
			depths = append(depths, h.Depth)
		},
		OnNodeLeave: func(_ context.Context, h *domain.NodeHook) { left = append(left, h.NodeID) },
		OnDispatch:  func(_ context.Context, h *domain.DispatchHook) { dispatched = h },
	}))

	_, err := engine.Dispatch(context.Background(), tree, domain.Event{ID: "evt-1", Kind: "GO"})
	require.NoError(t, err)

	assert.Equal(t, []string{"e", "a"}, entered)
	assert.Equal(t, []string{"a", "e"}, left)
	assert.Equal(t, []int{1, 2}, depths)
	require.NotNil(t, dispatched)
	assert.Equal(t, "evt-1", dispatched.EventID)
	assert.Equal(t, 1, dispatched.Matched)
	assert.Equal(t, 1, dispatched.Effects)
	assert.NoError(t, dispatched.Err)
}

func TestEventContext_Variables(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{"user": "ana", "count": 3, "ok": true, "nested": map[string]any{"x": 1}})
	ec := runtime.NewEventContext(domain.NewTree(nil, nil, nil), domain.Event{Kind: "MSG", Payload: payload})

	assert.Equal(t, "MSG", ec.Resolve("{{event.kind}}"))
	assert.Equal(t, "ana", ec.Resolve("{{ event.user }}"))
	assert.Equal(t, "3", ec.Resolve("{{event.count}}"))
	assert.Equal(t, "true", ec.Resolve("{{event.ok}}"))
	assert.Equal(t, "", ec.Resolve("{{event.nested}}"))
	assert.Equal(t, "", ec.Resolve("{{missing}}"))
	assert.Equal(t, "hello {{event.user}}", ec.Resolve("hello {{event.user}}"))
	assert.Equal(t, "plain", ec.Resolve("plain"))
}
