/*
Package easel is an interaction engine for infrastructure diagrams: it turns raw pointer input into scene mutations on a tree of nodes, sockets and edges.

It implements a staged gesture state machine, separating gesture recognition (Machine) from gesture effects (mode managers) and externally owned policy (edit sessions, diagram view state). The host owns input capture and drawing; the engine owns everything between.

# Concept

Easel treats a diagram as a scene tree whose root carries the view transform (pan and zoom). Pointer presses are hit-tested against the tree; each press, move and release drives a state machine through per-gesture stages, and the active mode manager applies the effect: panning the view, dragging a node, growing a provisional edge or placing a new node. Mutating gestures are only honored while an edit session is open. This Hexagonal Architecture allows Easel to be embedded in any interface: HTTP canvas backends, terminals, or AI Agent infrastructure.

# Key Features

  - Staged gestures: every gesture passes activation and initiation stages, so a click never mutates what a drag would.
  - Hexagonal Architecture: core logic is decoupled from adapters (storage, renderers, transports).
  - Edit sessions: mutations are gated on an open session, persistable and lockable across replicas.
  - Scoped selection: deployment diagrams partition selection by the drilled-into node.

# Usage

Initialize the engine with a diagram document. You can use the default filesystem loader or inject a diagram built in memory.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/easel"
		"github.com/aretw0/easel/pkg/domain"
	)

	func main() {
		// Initialize Engine with default settings (reads ./checkout.yaml)
		eng, err := easel.New("./checkout.yaml")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()

		// Editing requires an open session
		if _, err := eng.OpenSession(ctx, "rework", ""); err != nil {
			log.Fatal(err)
		}

		// Drag whatever sits at (110, 110) forty units to the right
		eng.PointerDown(ctx, domain.Point{X: 110, Y: 110})
		eng.PointerMove(ctx, domain.Point{X: 130, Y: 110})
		eng.PointerUp(ctx, domain.Point{X: 150, Y: 110})

		if _, err := eng.SaveSession(ctx); err != nil {
			log.Fatal(err)
		}
	}
*/
package easel
