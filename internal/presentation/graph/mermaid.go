package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// GraphOverlay contains dispatch data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	FailedNode   string
}

// GenerateMermaid produces a Mermaid flowchart from a flow.
// It applies semantic styling:
// - Entry: ((Circle))
// - Condition: {Rhombus}
// - Condition item: [/Parallelogram/]
// - Option: [[Subroutine]]
// - Action: [Rectangle]
// Structural edges (option -> command, item -> condition) are dotted.
// Edges with an endpoint missing from the node list are not drawn.
func GenerateMermaid(flow *domain.FlowData, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if flow == nil {
		return sb.String()
	}

	types := make(map[string]domain.NodeType, len(flow.Nodes))
	for _, node := range flow.Nodes {
		types[node.ID] = node.Type
	}

	for _, node := range flow.Nodes {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := shape(node.Type)
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label(node), closer))
	}

	for _, e := range flow.Edges {
		srcType, okSrc := types[e.Source]
		dstType, okDst := types[e.Target]
		if !okSrc || !okDst {
			continue
		}
		arrow := "-->"
		if isMembership(srcType, dstType) {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.FailedNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", sanitizeMermaidID(overlay.FailedNode)))
		}
	}

	return sb.String()
}

func shape(t domain.NodeType) (string, string) {
	switch {
	case t.IsEntry():
		return "((", "))"
	case t == domain.NodeTypeConditionCompare:
		return "{", "}"
	case t.IsConditionItem():
		return "[/", "/]"
	case t.IsOption():
		return "[[", "]]"
	}
	return "[", "]"
}

func label(n domain.Node) string {
	d := n.Data
	var detail string
	switch n.Type {
	case domain.NodeTypeEntryCommand:
		detail = "/" + d.Name
	case domain.NodeTypeEntryEvent:
		detail = d.EventType
	case domain.NodeTypeEntryError:
		detail = "on error"
	case domain.NodeTypeOptionText:
		detail = d.Name
		if d.Required {
			detail += " *"
		}
	case domain.NodeTypeActionLog:
		level, _ := domain.ParseLogLevel(d.LogLevel)
		detail = "log " + level.String()
	case domain.NodeTypeActionResponseText:
		detail = "reply"
	case domain.NodeTypeConditionCompare:
		detail = d.ConditionBaseValue
		if d.ConditionAllowMultiple {
			detail += " (all)"
		}
	case domain.NodeTypeConditionItemCompare:
		detail = fmt.Sprintf("%s %s", d.ConditionItemMode, d.ConditionItemValue)
	case domain.NodeTypeConditionItemElse:
		detail = "else"
	}
	text := n.ID
	if detail != "" {
		text = fmt.Sprintf("%s <br/> %s", n.ID, detail)
	}
	return strings.ReplaceAll(text, "\"", "'")
}

func isMembership(src, dst domain.NodeType) bool {
	return (src.IsOption() && dst == domain.NodeTypeEntryCommand) ||
		(src.IsConditionItem() && dst == domain.NodeTypeConditionCompare)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
