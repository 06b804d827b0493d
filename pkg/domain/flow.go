package domain

// NodeType identifies the kind of a declarative node.
type NodeType string

const (
	// NodeTypeEntryCommand is triggered by an interactive command invocation.
	NodeTypeEntryCommand NodeType = "entry_command"
	// NodeTypeEntryEvent is triggered by an event whose kind equals its event_type.
	NodeTypeEntryEvent NodeType = "entry_event"
	// NodeTypeEntryError is a reporting-only root visited for every event.
	NodeTypeEntryError NodeType = "entry_error"

	// NodeTypeOptionText is a text option of a command entry (structural child).
	NodeTypeOptionText NodeType = "option_text"

	NodeTypeActionLog          NodeType = "action_log"
	NodeTypeActionResponseText NodeType = "action_response_text"

	// NodeTypeConditionCompare branches on its items (structural children).
	NodeTypeConditionCompare     NodeType = "condition_compare"
	NodeTypeConditionItemCompare NodeType = "condition_item_compare"
	NodeTypeConditionItemElse    NodeType = "condition_item_else"
)

// NodeTypes lists every supported node type in declaration order.
var NodeTypes = []NodeType{
	NodeTypeEntryCommand,
	NodeTypeEntryEvent,
	NodeTypeEntryError,
	NodeTypeOptionText,
	NodeTypeActionLog,
	NodeTypeActionResponseText,
	NodeTypeConditionCompare,
	NodeTypeConditionItemCompare,
	NodeTypeConditionItemElse,
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsEntry reports whether nodes of this type become roots of the runtime tree.
func (t NodeType) IsEntry() bool {
	switch t {
	case NodeTypeEntryCommand, NodeTypeEntryEvent, NodeTypeEntryError:
		return true
	}
	return false
}

// IsOption reports whether t is a command option type.
func (t NodeType) IsOption() bool {
	return t == NodeTypeOptionText
}

// IsConditionItem reports whether t can be an item of a condition.
func (t NodeType) IsConditionItem() bool {
	return t == NodeTypeConditionItemCompare || t == NodeTypeConditionItemElse
}

// NodeData holds the type specific payload of a declarative node.
// Only the fields relevant to the node's type are read.
type NodeData struct {
	// Command entry & text option
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`

	// Event entry
	EventType string `json:"event_type,omitempty" yaml:"event_type,omitempty"`

	// Log action
	LogLevel   string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogMessage string `json:"log_message,omitempty" yaml:"log_message,omitempty"`

	// Text response action
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Condition
	ConditionBaseValue     string `json:"condition_base_value,omitempty" yaml:"condition_base_value,omitempty"`
	ConditionAllowMultiple bool   `json:"condition_allow_multiple,omitempty" yaml:"condition_allow_multiple,omitempty"`

	// Condition item
	ConditionItemMode  CompareMode `json:"condition_item_mode,omitempty" yaml:"condition_item_mode,omitempty"`
	ConditionItemValue string      `json:"condition_item_value,omitempty" yaml:"condition_item_value,omitempty"`
}

// Node is a declarative node as authored in the flow editor.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Type NodeType `json:"type" yaml:"type"`
	Data NodeData `json:"data" yaml:"data"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// FlowData is the graph source document: a flat list of nodes and edges.
type FlowData struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}
