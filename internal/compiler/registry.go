package compiler

import "github.com/aretw0/kiteflow/pkg/domain"

// Registry indexes declarative nodes by id.
// A repeated id replaces the earlier node; the collisions are recorded.
type Registry struct {
	nodes      map[string]domain.Node
	duplicates []string
}

// NewRegistry builds a registry over nodes.
func NewRegistry(nodes []domain.Node) *Registry {
	r := &Registry{nodes: make(map[string]domain.Node, len(nodes))}
	for _, n := range nodes {
		if _, exists := r.nodes[n.ID]; exists {
			r.duplicates = append(r.duplicates, n.ID)
		}
		r.nodes[n.ID] = n
	}
	return r
}

// Get returns the node registered under id.
func (r *Registry) Get(id string) (domain.Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of distinct ids.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Duplicates returns every id seen more than once, in the order the collisions occurred.
func (r *Registry) Duplicates() []string {
	return r.duplicates
}
