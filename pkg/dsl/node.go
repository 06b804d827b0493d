package dsl

import "github.com/aretw0/kiteflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// OnEvent marks the node as an entry triggered by events of the given kind.
func (n *NodeBuilder) OnEvent(kind string) *NodeBuilder {
	n.node.Type = domain.NodeTypeEntryEvent
	n.node.Data.EventType = kind
	return n
}

// OnCommand marks the node as a command entry.
func (n *NodeBuilder) OnCommand(name, description string) *NodeBuilder {
	n.node.Type = domain.NodeTypeEntryCommand
	n.node.Data.Name = name
	n.node.Data.Description = description
	return n
}

// OnError marks the node as an error entry.
func (n *NodeBuilder) OnError() *NodeBuilder {
	n.node.Type = domain.NodeTypeEntryError
	return n
}

// Option marks the node as a text option. Attach it to its command with Of.
func (n *NodeBuilder) Option(name, description string, required bool) *NodeBuilder {
	n.node.Type = domain.NodeTypeOptionText
	n.node.Data.Name = name
	n.node.Data.Description = description
	n.node.Data.Required = required
	return n
}

// Log marks the node as a log action.
func (n *NodeBuilder) Log(level, message string) *NodeBuilder {
	n.node.Type = domain.NodeTypeActionLog
	n.node.Data.LogLevel = level
	n.node.Data.LogMessage = message
	return n
}

// Text marks the node as a text response action.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	n.node.Type = domain.NodeTypeActionResponseText
	n.node.Data.Text = content
	return n
}

// Condition marks the node as a condition over base, a template
// such as "{{event.content}}".
func (n *NodeBuilder) Condition(base string) *NodeBuilder {
	n.node.Type = domain.NodeTypeConditionCompare
	n.node.Data.ConditionBaseValue = base
	return n
}

// AllowMultiple makes a condition run every matching item instead of the first.
func (n *NodeBuilder) AllowMultiple() *NodeBuilder {
	n.node.Data.ConditionAllowMultiple = true
	return n
}

// When marks the node as a compare item. Attach it to its condition with Of.
func (n *NodeBuilder) When(mode domain.CompareMode, value string) *NodeBuilder {
	n.node.Type = domain.NodeTypeConditionItemCompare
	n.node.Data.ConditionItemMode = mode
	n.node.Data.ConditionItemValue = value
	return n
}

// Else marks the node as the fallback item of a condition.
func (n *NodeBuilder) Else() *NodeBuilder {
	n.node.Type = domain.NodeTypeConditionItemElse
	return n
}

// Of attaches an option to its command or an item to its condition.
// The edge runs from the child to the parent.
func (n *NodeBuilder) Of(parent string) *NodeBuilder {
	n.builder.connect(n.node.ID, parent)
	return n
}

// Go adds an edge to the target node, which runs after this one.
// From a condition item, an edge to a condition is always read as membership,
// so an item cannot branch straight into a nested condition; route it through
// an action node first.
func (n *NodeBuilder) Go(targets ...string) *NodeBuilder {
	for _, target := range targets {
		n.builder.connect(n.node.ID, target)
	}
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
