// Package catalog holds the node-schema palette: the set of node types a
// user can place on a diagram. Entries are searched fuzzily by the palette
// UI and resolved to concrete scene nodes when a node-add gesture begins.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aretw0/easel/pkg/domain"
)

// SocketSpec describes one socket a schema type exposes on every node
// created from it.
type SocketSpec struct {
	Name      string `json:"name" yaml:"name"`
	Direction string `json:"direction" yaml:"direction"`
}

// Entry is one palette item. Name is the unique palette label; Type is the
// schema type stamped on created nodes. Zero Width/Height defer to the
// scene's default extents.
type Entry struct {
	Name        string       `json:"name" yaml:"name"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Type        string       `json:"type" yaml:"type"`
	Width       float64      `json:"width,omitempty" yaml:"width,omitempty"`
	Height      float64      `json:"height,omitempty" yaml:"height,omitempty"`
	Sockets     []SocketSpec `json:"sockets,omitempty" yaml:"sockets,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// Source loads palette entries from a backing store (a loam repository, a
// static config). The CLI and facade build catalogs through it.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// Catalog is an ordered, searchable collection of entries. It is built once
// and read concurrently; mutate only before sharing.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

// New creates a catalog from the given entries. Invalid or duplicate
// entries make construction fail.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int)}
	for _, e := range entries {
		if err := c.Add(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FromSource loads a catalog through a Source.
func FromSource(ctx context.Context, src Source) (*Catalog, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(entries...)
}

// Add appends an entry. Names are unique; socket directions must be valid.
func (c *Catalog) Add(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("catalog entry needs a name")
	}
	if e.Type == "" {
		return fmt.Errorf("catalog entry %q needs a type", e.Name)
	}
	if _, exists := c.byName[e.Name]; exists {
		return fmt.Errorf("catalog entry %q already registered", e.Name)
	}
	for _, s := range e.Sockets {
		if s.Direction != domain.DirectionInput && s.Direction != domain.DirectionOutput {
			return fmt.Errorf("catalog entry %q: socket %q has invalid direction %q", e.Name, s.Name, s.Direction)
		}
	}
	c.byName[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
	return nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all entries in registration order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Get looks an entry up by its palette name.
func (c *Catalog) Get(name string) (Entry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ByCategory returns the entries of one category in registration order.
func (c *Catalog) ByCategory(category string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.entries {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	return out
}

// Search fuzzy-matches the query against entry names and returns matches
// best-first. An empty query returns every entry in registration order.
func (c *Catalog) Search(query string) []Entry {
	if query == "" {
		return c.Entries()
	}

	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}

	matches := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(matches)

	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.entries[m.OriginalIndex])
	}
	return out
}
