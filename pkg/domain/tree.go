package domain

import "sort"

// Kind is the variant of a resolved runtime node.
type Kind int

const (
	// KindNoOp is the placeholder kind. A slot keeps it only until its
	// resolution completes.
	KindNoOp Kind = iota
	KindEntryCommand
	KindEntryEvent
	KindEntryError
	KindCommandOptionText
	KindActionLog
	KindActionResponseText
	KindConditionCompare
	KindConditionItemCompare
	KindConditionItemElse
)

var kindNames = map[Kind]string{
	KindNoOp:                 "noop",
	KindEntryCommand:         "entry_command",
	KindEntryEvent:           "entry_event",
	KindEntryError:           "entry_error",
	KindCommandOptionText:    "option_text",
	KindActionLog:            "action_log",
	KindActionResponseText:   "action_response_text",
	KindConditionCompare:     "condition_compare",
	KindConditionItemCompare: "condition_item_compare",
	KindConditionItemElse:    "condition_item_else",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// KindOf maps a declarative node type to its runtime kind.
func KindOf(t NodeType) (Kind, bool) {
	switch t {
	case NodeTypeEntryCommand:
		return KindEntryCommand, true
	case NodeTypeEntryEvent:
		return KindEntryEvent, true
	case NodeTypeEntryError:
		return KindEntryError, true
	case NodeTypeOptionText:
		return KindCommandOptionText, true
	case NodeTypeActionLog:
		return KindActionLog, true
	case NodeTypeActionResponseText:
		return KindActionResponseText, true
	case NodeTypeConditionCompare:
		return KindConditionCompare, true
	case NodeTypeConditionItemCompare:
		return KindConditionItemCompare, true
	case NodeTypeConditionItemElse:
		return KindConditionItemElse, true
	}
	return KindNoOp, false
}

// NodeRef is the index of a runtime node within its Tree arena.
type NodeRef int

// RuntimeNode is a resolved node. Links to other nodes are arena references.
// Only the fields relevant to Kind are populated.
type RuntimeNode struct {
	ID   string
	Kind Kind

	Name        string
	Description string
	Required    bool
	EventType   string

	Level   LogLevel
	Message string
	Text    string

	BaseValue     string
	AllowMultiple bool
	Mode          CompareMode
	Value         string

	Options []NodeRef
	Items   []NodeRef
	Next    []NodeRef
}

// Tree is the executable structure built from one FlowData.
// It is never mutated once returned by the builder.
type Tree struct {
	Nodes   []RuntimeNode
	Entries []NodeRef

	index map[string]NodeRef
}

// NewTree wraps an arena. index maps declarative ids to their slot.
func NewTree(nodes []RuntimeNode, entries []NodeRef, index map[string]NodeRef) *Tree {
	if index == nil {
		index = make(map[string]NodeRef, len(nodes))
		for i, n := range nodes {
			index[n.ID] = NodeRef(i)
		}
	}
	return &Tree{Nodes: nodes, Entries: entries, index: index}
}

// Node returns the node stored at ref, or nil when ref is out of range.
func (t *Tree) Node(ref NodeRef) *RuntimeNode {
	if ref < 0 || int(ref) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[ref]
}

// Lookup returns the slot of a declarative id.
func (t *Tree) Lookup(id string) (NodeRef, bool) {
	ref, ok := t.index[id]
	return ref, ok
}

// Len returns the number of runtime nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Events returns the sorted set of event kinds that can fire an entry.
func (t *Tree) Events() []string {
	seen := make(map[string]struct{})
	for _, ref := range t.Entries {
		n := t.Node(ref)
		switch n.Kind {
		case KindEntryCommand:
			seen[EventKindInteractionCreate] = struct{}{}
		case KindEntryEvent:
			seen[n.EventType] = struct{}{}
		}
	}
	events := make([]string, 0, len(seen))
	for kind := range seen {
		events = append(events, kind)
	}
	sort.Strings(events)
	return events
}

// Commands returns the command entries in entry order.
func (t *Tree) Commands() []*RuntimeNode {
	var cmds []*RuntimeNode
	for _, ref := range t.Entries {
		if n := t.Node(ref); n.Kind == KindEntryCommand {
			cmds = append(cmds, n)
		}
	}
	return cmds
}
