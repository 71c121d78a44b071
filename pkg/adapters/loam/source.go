// Package loam adapts a Loam content repository to the catalog.Source
// interface: each markdown document is one palette entry, with the schema
// metadata in the frontmatter and the description in the body.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/easel/pkg/catalog"
)

// Source loads palette entries from a Loam repository.
type Source struct {
	Repo *loam.TypedRepository[EntryMetadata]
}

// New creates a new Loam catalog source.
func New(repo *loam.TypedRepository[EntryMetadata]) *Source {
	return &Source{Repo: repo}
}

// Load implements catalog.Source. Entries come back sorted by category then
// name so the palette is stable across filesystems.
func (s *Source) Load(ctx context.Context) ([]catalog.Entry, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	entries := make([]catalog.Entry, 0, len(docs))
	for _, doc := range docs {
		entry, err := toEntry(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func toEntry(docID string, meta EntryMetadata, content string) (catalog.Entry, error) {
	name := meta.Name
	if name == "" {
		// Fall back to the filename, as Loam IDs are file paths.
		name = trimExtension(docID)
	}
	if meta.Type == "" {
		return catalog.Entry{}, fmt.Errorf("palette document %q has no type", docID)
	}

	sockets := make([]catalog.SocketSpec, 0, len(meta.Sockets))
	for _, sd := range meta.Sockets {
		sockets = append(sockets, catalog.SocketSpec{Name: sd.Name, Direction: sd.Direction})
	}

	return catalog.Entry{
		Name:        name,
		Category:    meta.Category,
		Type:        meta.Type,
		Width:       meta.Width,
		Height:      meta.Height,
		Sockets:     sockets,
		Description: strings.TrimSpace(content),
	}, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch surfaces palette document changes as reload signals, matching the
// ports.Watchable channel shape.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
