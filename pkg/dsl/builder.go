package dsl

import (
	"fmt"

	"github.com/aretw0/kiteflow/pkg/adapters/memory"
	"github.com/aretw0/kiteflow/pkg/domain"
)

// Builder manages the flow construction.
// Nodes and edges keep the order in which they were added.
type Builder struct {
	nodes []*NodeBuilder
	byID  map[string]*NodeBuilder
	edges []domain.Edge
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{
		byID: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the flow.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.byID[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes = append(b.nodes, nb)
	b.byID[id] = nb
	return nb
}

func (b *Builder) connect(source, target string) {
	b.edges = append(b.edges, domain.Edge{
		ID:     fmt.Sprintf("%s-%s-%d", source, target, len(b.edges)),
		Source: source,
		Target: target,
	})
}

// Flow returns the declarative flow built so far.
func (b *Builder) Flow() domain.FlowData {
	flow := domain.FlowData{
		Nodes: make([]domain.Node, 0, len(b.nodes)),
		Edges: append([]domain.Edge{}, b.edges...),
	}
	for _, nb := range b.nodes {
		flow.Nodes = append(flow.Nodes, nb.node)
	}
	return flow
}

// Build compiles the flow into a memory Loader.
// Nodes without a type are rejected.
func (b *Builder) Build() (*memory.Loader, error) {
	for _, nb := range b.nodes {
		if nb.node.Type == "" {
			return nil, fmt.Errorf("node '%s' has no type", nb.node.ID)
		}
	}

	loader, err := memory.NewFromFlow(b.Flow())
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
