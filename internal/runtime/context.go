package runtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// MaxDepth is the deepest nesting a single walk may reach.
const MaxDepth = 100

// EventContext is the ephemeral state of one dispatch.
// It is owned by that dispatch and discarded when it returns.
type EventContext struct {
	Depth     int
	Variables map[string]string

	event  domain.Event
	tree   *domain.Tree
	result *Result
}

// NewEventContext seeds the variables of event: "event.kind" plus one
// "event.<key>" per top-level scalar field of an object payload.
func NewEventContext(tree *domain.Tree, event domain.Event) *EventContext {
	vars := map[string]string{"event.kind": event.Kind}

	if len(event.Payload) > 0 {
		var fields map[string]any
		if err := json.Unmarshal(event.Payload, &fields); err == nil {
			for k, v := range fields {
				switch val := v.(type) {
				case string:
					vars["event."+k] = val
				case float64, bool:
					vars["event."+k] = fmt.Sprint(val)
				}
			}
		}
	}

	return &EventContext{
		Variables: vars,
		event:     event,
		tree:      tree,
		result:    &Result{EventID: event.ID, EventKind: event.Kind},
	}
}

// Resolve returns the bound variable when value is exactly "{{name}}".
// Any other value is returned unchanged; an unbound name resolves to "".
func (c *EventContext) Resolve(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "{{") || !strings.HasSuffix(trimmed, "}}") {
		return value
	}
	name := strings.TrimSpace(trimmed[2 : len(trimmed)-2])
	if name == "" || strings.ContainsAny(name, "{}") {
		return value
	}
	return c.Variables[name]
}

// Result returns what the dispatch has produced so far.
func (c *EventContext) Result() Result {
	return *c.result
}

// Result summarizes what one dispatch did.
type Result struct {
	EventID   string                `json:"event_id"`
	EventKind string                `json:"event_kind"`
	Matched   []string              `json:"matched"`
	Effects   []domain.Effect       `json:"effects"`
	Options   []domain.OptionRecord `json:"options,omitempty"`
}

// Handled reports whether at least one entry matched the event.
func (r Result) Handled() bool {
	return len(r.Matched) > 0
}
