// Package validator checks diagram documents for structural problems
// before they are loaded. Unlike the scene parser, which stops at the
// first defect, validation walks the whole document and reports every
// problem it finds in one pass.
package validator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

type document struct {
	Name  string    `yaml:"name"`
	Kind  string    `yaml:"kind"`
	Nodes []docNode `yaml:"nodes"`
	Edges []docEdge `yaml:"edges"`
}

type docNode struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Parent  string      `yaml:"parent"`
	Sockets []docSocket `yaml:"sockets"`
}

type docSocket struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
}

type docEdge struct {
	ID   string `yaml:"id"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ValidateDiagram parses a raw diagram document and accumulates every
// structural error: duplicate identifiers, unknown parent references,
// invalid socket directions, and edges that dangle or run against the
// direction of their sockets. It returns nil when the document is clean.
func ValidateDiagram(data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("validate diagram: %w", err)
	}

	var errors []string

	seen := make(map[string]bool)
	nodes := make(map[string]bool)
	socketDirection := make(map[string]string)
	socketOwner := make(map[string]string)

	// First pass registers every identifier so parent and edge checks
	// can run regardless of declaration order.
	for i, nd := range doc.Nodes {
		if nd.ID == "" {
			errors = append(errors, fmt.Sprintf("node at index %d has no id", i))
			continue
		}
		if seen[nd.ID] {
			errors = append(errors, fmt.Sprintf("duplicate id %q", nd.ID))
			continue
		}
		seen[nd.ID] = true
		nodes[nd.ID] = true

		for j, sk := range nd.Sockets {
			if sk.ID == "" {
				errors = append(errors, fmt.Sprintf("node %q: socket at index %d has no id", nd.ID, j))
				continue
			}
			if seen[sk.ID] {
				errors = append(errors, fmt.Sprintf("duplicate id %q", sk.ID))
				continue
			}
			seen[sk.ID] = true
			socketOwner[sk.ID] = nd.ID

			switch sk.Direction {
			case domain.DirectionInput, domain.DirectionOutput:
				socketDirection[sk.ID] = sk.Direction
			default:
				errors = append(errors, fmt.Sprintf("node %q: socket %q has invalid direction %q", nd.ID, sk.ID, sk.Direction))
			}
		}
	}

	for _, nd := range doc.Nodes {
		if nd.ID == "" || nd.Parent == "" || nd.Parent == scene.RootID {
			continue
		}
		if _, isSocket := socketOwner[nd.Parent]; isSocket {
			errors = append(errors, fmt.Sprintf("node %q: parent %q is a socket", nd.ID, nd.Parent))
			continue
		}
		if !nodes[nd.Parent] {
			errors = append(errors, fmt.Sprintf("node %q: unknown parent %q", nd.ID, nd.Parent))
		}
	}

	connected := make(map[string]bool)
	for i, e := range doc.Edges {
		label := e.ID
		if label == "" {
			label = fmt.Sprintf("at index %d", i)
		} else {
			label = fmt.Sprintf("%q", label)
		}

		if e.From == "" || e.To == "" {
			errors = append(errors, fmt.Sprintf("edge %s is missing an endpoint", label))
			continue
		}

		ok := true
		for _, end := range []string{e.From, e.To} {
			if _, isSocket := socketOwner[end]; isSocket {
				continue
			}
			ok = false
			if nodes[end] {
				errors = append(errors, fmt.Sprintf("edge %s: endpoint %q is a node, not a socket", label, end))
			} else {
				errors = append(errors, fmt.Sprintf("edge %s: unknown socket %q", label, end))
			}
		}
		if !ok {
			continue
		}

		if dir, known := socketDirection[e.From]; known && dir != domain.DirectionOutput {
			errors = append(errors, fmt.Sprintf("edge %s: source socket %q is an %s", label, e.From, dir))
		}
		if dir, known := socketDirection[e.To]; known && dir != domain.DirectionInput {
			errors = append(errors, fmt.Sprintf("edge %s: target socket %q is an %s", label, e.To, dir))
		}

		if socketOwner[e.From] == socketOwner[e.To] {
			errors = append(errors, fmt.Sprintf("edge %s connects node %q to itself", label, socketOwner[e.From]))
		}

		pair := e.From + "->" + e.To
		if connected[pair] {
			errors = append(errors, fmt.Sprintf("duplicate edge %q -> %q", e.From, e.To))
		}
		connected[pair] = true
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
