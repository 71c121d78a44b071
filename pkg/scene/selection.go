package scene

import (
	"sort"
)

// Selection is the per-scope selected-node registry. The scope key is the
// deployment node the user has drilled into, or domain.ScopeRoot at the top
// level. Scopes isolate nested diagram contexts from each other: selecting
// inside one deployment never disturbs another's selection.
//
// The API is list-valued, but downstream consumers act on the first entry
// only; Select replaces a scope's whole entry. Like the graph, Selection is
// owned by the interaction manager and is not safe for concurrent use.
type Selection struct {
	entries map[string][]string
}

// NewSelection creates an empty selection registry.
func NewSelection() *Selection {
	return &Selection{entries: make(map[string][]string)}
}

// Select replaces the scope's selection with the given node IDs.
func (s *Selection) Select(scope string, ids ...string) {
	if len(ids) == 0 {
		s.Clear(scope)
		return
	}
	s.entries[scope] = append([]string(nil), ids...)
}

// Clear empties the selection for one scope.
func (s *Selection) Clear(scope string) {
	delete(s.entries, scope)
}

// Reset empties every scope. Used when the diagram is replaced wholesale.
func (s *Selection) Reset() {
	s.entries = make(map[string][]string)
}

// Selected returns a copy of the scope's selection, in selection order.
func (s *Selection) Selected(scope string) []string {
	return append([]string(nil), s.entries[scope]...)
}

// First returns the scope's primary selected node. This is the entry every
// downstream consumer acts on.
func (s *Selection) First(scope string) (string, bool) {
	ids := s.entries[scope]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Scopes returns the scopes that currently hold a selection, sorted.
func (s *Selection) Scopes() []string {
	out := make([]string, 0, len(s.entries))
	for scope := range s.entries {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

// Drop removes a node from every scope it appears in. Called when the node
// is removed from the graph.
func (s *Selection) Drop(nodeID string) {
	for scope, ids := range s.entries {
		kept := ids[:0]
		for _, id := range ids {
			if id != nodeID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(s.entries, scope)
		} else {
			s.entries[scope] = kept
		}
	}
}
