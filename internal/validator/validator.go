package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/kiteflow/internal/compiler"
	"github.com/aretw0/kiteflow/pkg/domain"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding about a flow.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	EdgeID   string   `json:"edge_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
}

// Report collects the issues of one validation pass, in discovery order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns nil when the report has no errors, or a summary error otherwise.
func (r Report) Err() error {
	var msgs []string
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			msgs = append(msgs, i.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(msgs), strings.Join(msgs, "\n- "))
}

func (r *Report) add(sev Severity, nodeID, edgeID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		NodeID:   nodeID,
		EdgeID:   edgeID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Validate inspects a flow for problems the compiler tolerates silently:
// duplicate ids, dangling edges, bad condition modes and unreachable nodes.
func Validate(flow *domain.FlowData) Report {
	var report Report
	if flow == nil {
		report.add(SeverityWarning, "", "", "flow is empty")
		return report
	}

	registry := compiler.NewRegistry(flow.Nodes)
	for _, id := range registry.Duplicates() {
		report.add(SeverityError, id, "", "duplicate node id '%s' (the last definition wins)", id)
	}

	for _, e := range flow.Edges {
		if _, ok := registry.Get(e.Source); !ok {
			report.add(SeverityWarning, "", e.ID, "edge '%s' references missing source node '%s'", e.ID, e.Source)
		}
		if _, ok := registry.Get(e.Target); !ok {
			report.add(SeverityWarning, "", e.ID, "edge '%s' references missing target node '%s'", e.ID, e.Target)
		}
	}

	checkMembership(&report, flow, registry)

	hasEntry := false
	for _, n := range flow.Nodes {
		if !n.Type.Valid() {
			report.add(SeverityError, n.ID, "", "node '%s' has unknown type '%s'", n.ID, n.Type)
			continue
		}
		if n.Type.IsEntry() {
			hasEntry = true
		}
		switch n.Type {
		case domain.NodeTypeConditionItemCompare:
			mode := n.Data.ConditionItemMode
			switch {
			case mode.IsImplemented():
			case mode.IsReserved():
				report.add(SeverityWarning, n.ID, "", "condition item '%s' uses mode '%s' which is not implemented and fails at dispatch", n.ID, mode)
			default:
				report.add(SeverityError, n.ID, "", "condition item '%s' has unknown mode '%s'", n.ID, mode)
			}
		case domain.NodeTypeActionLog:
			if _, ok := domain.ParseLogLevel(n.Data.LogLevel); !ok {
				report.add(SeverityWarning, n.ID, "", "log action '%s' has unknown level '%s' (info is used)", n.ID, n.Data.LogLevel)
			}
		}
	}
	if !hasEntry {
		report.add(SeverityWarning, "", "", "flow has no entry nodes and will never run")
	}

	reached := crawl(flow, registry, compiler.NewGraphIndex(flow.Edges))
	seen := make(map[string]bool)
	for _, n := range flow.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if !reached[n.ID] {
			report.add(SeverityWarning, n.ID, "", "node '%s' is unreachable from any entry", n.ID)
		}
	}

	return report
}

// checkMembership flags condition items wired to more than one condition.
// Every edge from an item to a condition is membership, so an edge meant as a
// branch into a nested condition never runs.
func checkMembership(report *Report, flow *domain.FlowData, registry *compiler.Registry) {
	byItem := make(map[string][]domain.Edge)
	var order []string
	for _, e := range flow.Edges {
		src, ok := registry.Get(e.Source)
		if !ok || !src.Type.IsConditionItem() {
			continue
		}
		dst, ok := registry.Get(e.Target)
		if !ok || dst.Type != domain.NodeTypeConditionCompare {
			continue
		}
		if _, seen := byItem[e.Source]; !seen {
			order = append(order, e.Source)
		}
		byItem[e.Source] = append(byItem[e.Source], e)
	}

	for _, item := range order {
		edges := byItem[item]
		if len(edges) < 2 {
			continue
		}
		for _, e := range edges {
			report.add(SeverityWarning, item, e.ID,
				"edge '%s' from condition item '%s' to condition '%s' is treated as membership, not as a branch", e.ID, item, e.Target)
		}
	}
}

// crawl walks the flow from its entries following the same edge roles as the builder.
func crawl(flow *domain.FlowData, registry *compiler.Registry, index *compiler.GraphIndex) map[string]bool {
	visited := make(map[string]bool)
	var queue []string
	for _, n := range flow.Nodes {
		if n.Type.IsEntry() {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		if visited[currentID] {
			continue
		}
		node, ok := registry.Get(currentID)
		if !ok {
			continue
		}
		visited[currentID] = true

		switch node.Type {
		case domain.NodeTypeEntryCommand:
			queue = append(queue, structural(index, registry, currentID, domain.NodeType.IsOption)...)
		case domain.NodeTypeConditionCompare:
			queue = append(queue, structural(index, registry, currentID, domain.NodeType.IsConditionItem)...)
			continue
		case domain.NodeTypeEntryError, domain.NodeTypeOptionText:
			continue
		}

		for _, target := range index.Targets(currentID) {
			next, ok := registry.Get(target)
			if !ok {
				continue
			}
			if node.Type.IsConditionItem() && next.Type == domain.NodeTypeConditionCompare {
				continue
			}
			queue = append(queue, target)
		}
	}
	return visited
}

func structural(index *compiler.GraphIndex, registry *compiler.Registry, id string, accept func(domain.NodeType) bool) []string {
	var out []string
	for _, src := range index.Sources(id) {
		if n, ok := registry.Get(src); ok && accept(n.Type) {
			out = append(out, src)
		}
	}
	return out
}
