package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// Builder resolves FlowData into the runtime Tree.
type Builder struct {
	strict bool
	logger *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStrictIDs makes Build fail when two nodes share an id.
// By default the last node registered under an id wins.
func WithStrictIDs(strict bool) BuilderOption {
	return func(b *Builder) {
		b.strict = strict
	}
}

// WithBuilderLogger sets the logger used for build diagnostics.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves every entry node of flow, in node-list order.
func (b *Builder) Build(flow *domain.FlowData) (*domain.Tree, error) {
	if flow == nil {
		flow = &domain.FlowData{}
	}

	for _, n := range flow.Nodes {
		if !n.Type.Valid() {
			return nil, fmt.Errorf("node %q: %w %q", n.ID, domain.ErrUnknownNodeType, n.Type)
		}
	}

	registry := NewRegistry(flow.Nodes)
	if dups := registry.Duplicates(); len(dups) > 0 {
		if b.strict {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateNodeID, strings.Join(dups, ", "))
		}
		b.logger.Debug("duplicate node ids collapsed", "ids", dups)
	}

	r := &resolution{
		registry: registry,
		index:    NewGraphIndex(flow.Edges),
		memo:     make(map[string]domain.NodeRef, registry.Len()),
	}

	var entries []domain.NodeRef
	seen := make(map[domain.NodeRef]bool)
	for _, n := range flow.Nodes {
		if !n.Type.IsEntry() {
			continue
		}
		// A later duplicate may have replaced the entry with another kind.
		node, _ := registry.Get(n.ID)
		if !node.Type.IsEntry() {
			continue
		}
		ref := r.resolve(node)
		if seen[ref] {
			continue
		}
		seen[ref] = true
		entries = append(entries, ref)
	}

	b.logger.Debug("flow tree built", "nodes", len(r.arena), "entries", len(entries))
	return domain.NewTree(r.arena, entries, r.memo), nil
}

// resolution is the state of one construction pass.
type resolution struct {
	registry *Registry
	index    *GraphIndex
	arena    []domain.RuntimeNode
	memo     map[string]domain.NodeRef
}

// resolve returns the arena slot of node, allocating it on first visit.
// The slot is registered before children are resolved so cycles hit the
// placeholder instead of recursing.
func (r *resolution) resolve(node domain.Node) domain.NodeRef {
	if ref, ok := r.memo[node.ID]; ok {
		return ref
	}

	ref := domain.NodeRef(len(r.arena))
	r.arena = append(r.arena, domain.RuntimeNode{ID: node.ID, Kind: domain.KindNoOp})
	r.memo[node.ID] = ref

	kind, _ := domain.KindOf(node.Type)
	out := domain.RuntimeNode{ID: node.ID, Kind: kind}
	d := node.Data

	switch node.Type {
	case domain.NodeTypeEntryCommand:
		out.Name = d.Name
		out.Description = d.Description
		out.Options = r.children(node.ID, domain.NodeType.IsOption)
		out.Next = r.successors(node)
	case domain.NodeTypeEntryEvent:
		out.EventType = d.EventType
		out.Next = r.successors(node)
	case domain.NodeTypeEntryError:
	case domain.NodeTypeOptionText:
		out.Name = d.Name
		out.Description = d.Description
		out.Required = d.Required
	case domain.NodeTypeActionLog:
		out.Level, _ = domain.ParseLogLevel(d.LogLevel)
		out.Message = d.LogMessage
		out.Next = r.successors(node)
	case domain.NodeTypeActionResponseText:
		out.Text = d.Text
		out.Next = r.successors(node)
	case domain.NodeTypeConditionCompare:
		out.BaseValue = d.ConditionBaseValue
		out.AllowMultiple = d.ConditionAllowMultiple
		out.Items = r.children(node.ID, domain.NodeType.IsConditionItem)
	case domain.NodeTypeConditionItemCompare:
		out.Mode = d.ConditionItemMode
		out.Value = d.ConditionItemValue
		out.Next = r.successors(node)
	case domain.NodeTypeConditionItemElse:
		out.Next = r.successors(node)
	}

	r.arena[ref] = out
	return ref
}

// children resolves the structural children of id: sources of edges
// arriving at it whose type satisfies accept.
func (r *resolution) children(id string, accept func(domain.NodeType) bool) []domain.NodeRef {
	var refs []domain.NodeRef
	for _, src := range r.index.Sources(id) {
		child, ok := r.registry.Get(src)
		if !ok || !accept(child.Type) {
			continue
		}
		refs = append(refs, r.resolve(child))
	}
	return refs
}

// successors resolves the targets of edges leaving node.
// For a condition item the edge to its condition is membership, not sequence.
func (r *resolution) successors(node domain.Node) []domain.NodeRef {
	var refs []domain.NodeRef
	for _, dst := range r.index.Targets(node.ID) {
		next, ok := r.registry.Get(dst)
		if !ok {
			continue
		}
		if node.Type.IsConditionItem() && next.Type == domain.NodeTypeConditionCompare {
			continue
		}
		refs = append(refs, r.resolve(next))
	}
	return refs
}

// Compile parses a JSON graph source and builds its tree.
func Compile(data []byte, opts ...BuilderOption) (*domain.Tree, error) {
	flow, err := NewParser().Parse(data)
	if err != nil {
		return nil, err
	}
	return NewBuilder(opts...).Build(flow)
}
