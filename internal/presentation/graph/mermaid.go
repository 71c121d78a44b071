package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// Overlay contains interaction state to visualize on the exported graph.
type Overlay struct {
	Selected []string
	Focus    string
}

// GenerateMermaid produces a Mermaid flowchart from the diagram.
// It applies semantic shapes:
// - Data stores (postgres, mysql, redis, database): [(Cylinder)]
// - Queues and brokers: [[Subroutine]]
// - Default: [Rectangle]
// Nodes nested under a group become a subgraph, edges crossing a group
// boundary are dotted, and placeholder nodes are dashed. Overlay styles
// (Selected/Focus) are applied if provided.
func GenerateMermaid(d *scene.Diagram, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var pending []string

	var walk func(n *scene.Node, indent string)
	walk = func(n *scene.Node, indent string) {
		for _, node := range n.Children() {
			if node.Kind != domain.KindNode {
				continue
			}
			safeID := sanitizeMermaidID(node.ID)
			if node.Placeholder {
				pending = append(pending, safeID)
			}

			if hasChildNodes(node) {
				sb.WriteString(fmt.Sprintf("%ssubgraph %s[\"%s\"]\n", indent, safeID, labelFor(node)))
				walk(node, indent+"    ")
				sb.WriteString(indent + "end\n")
				continue
			}

			opener, closer := shapeFor(node.Type)
			sb.WriteString(fmt.Sprintf("%s%s%s\"%s\"%s\n", indent, safeID, opener, labelFor(node), closer))
		}
	}
	walk(d.Graph.Root(), "    ")

	for _, e := range d.Graph.Edges() {
		from, to, ok := edgeEndpoints(d.Graph, e)
		if !ok {
			continue
		}
		// Cross-group connections read as jumps.
		arrow := "-->"
		if from.Parent() != to.Parent() {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(from.ID), arrow, sanitizeMermaidID(to.ID)))
	}

	if len(pending) > 0 {
		sb.WriteString("\n    %% Pending placements\n")
		sb.WriteString("    classDef pending stroke-dasharray: 5 5;\n")
		for _, id := range pending {
			sb.WriteString(fmt.Sprintf("    class %s pending;\n", id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Interaction overlay\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Selected {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeID))
		}

		if overlay.Focus != "" {
			sb.WriteString(fmt.Sprintf("    class %s focus;\n", sanitizeMermaidID(overlay.Focus)))
		}
	}

	return sb.String()
}

func hasChildNodes(n *scene.Node) bool {
	for _, c := range n.Children() {
		if c.Kind == domain.KindNode {
			return true
		}
	}
	return false
}

func labelFor(n *scene.Node) string {
	label := n.Name
	if label == "" {
		label = n.ID
	}
	// Escape double quotes for Mermaid labels.
	return strings.ReplaceAll(label, "\"", "'")
}

func shapeFor(nodeType string) (string, string) {
	switch strings.ToLower(nodeType) {
	case "postgres", "mysql", "redis", "database", "db":
		return "[(", ")]"
	case "queue", "topic", "broker", "kafka":
		return "[[", "]]"
	default:
		return "[", "]"
	}
}

func edgeEndpoints(g *scene.Graph, e *scene.Edge) (*scene.Node, *scene.Node, bool) {
	fromSocket, ok := g.Node(e.FromSocket)
	if !ok || fromSocket.Parent() == nil {
		return nil, nil, false
	}
	toSocket, ok := g.Node(e.ToSocket)
	if !ok || toSocket.Parent() == nil {
		return nil, nil, false
	}
	return fromSocket.Parent(), toSocket.Parent(), true
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
