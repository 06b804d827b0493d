package compiler

import "github.com/aretw0/kiteflow/pkg/domain"

// GraphIndex holds the adjacency views over a flat edge list.
// Insertion order within each group follows the edge list.
type GraphIndex struct {
	bySource map[string][]string
	byTarget map[string][]string
}

// NewGraphIndex groups edges by source and by target.
// Dangling ids are kept; consumers drop them on lookup.
func NewGraphIndex(edges []domain.Edge) *GraphIndex {
	idx := &GraphIndex{
		bySource: make(map[string][]string),
		byTarget: make(map[string][]string),
	}
	for _, e := range edges {
		idx.bySource[e.Source] = append(idx.bySource[e.Source], e.Target)
		idx.byTarget[e.Target] = append(idx.byTarget[e.Target], e.Source)
	}
	return idx
}

// Targets returns the ids reached by edges leaving id (sequential role).
func (g *GraphIndex) Targets(id string) []string {
	return g.bySource[id]
}

// Sources returns the ids of edges arriving at id (structural role).
func (g *GraphIndex) Sources(id string) []string {
	return g.byTarget[id]
}
