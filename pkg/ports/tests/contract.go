// Package tests provides reusable contract suites for ports implementations.
package tests

import (
	"context"
	"testing"

	"github.com/aretw0/easel/pkg/ports"
)

// DiagramLoaderContractTest is a reusable test suite that verifies if an
// adapter complies with ports.DiagramLoader. wantNodes lists the element IDs
// the loaded diagram must contain.
func DiagramLoaderContractTest(t *testing.T, loader ports.DiagramLoader, wantName string, wantNodes []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		d, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading diagram: %v", err)
		}
		if d.Name != wantName {
			t.Errorf("diagram name mismatch. got %q, want %q", d.Name, wantName)
		}
		for _, id := range wantNodes {
			if _, ok := d.Graph.Node(id); !ok {
				t.Errorf("node %s missing from loaded diagram", id)
			}
		}
	})

	t.Run("Load is repeatable", func(t *testing.T) {
		first, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error on first load: %v", err)
		}
		second, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error on second load: %v", err)
		}
		if first == second {
			t.Error("loads must return independent diagram instances")
		}
		if len(first.Graph.Nodes()) != len(second.Graph.Nodes()) {
			t.Error("repeated loads disagree on node count")
		}
	})
}
