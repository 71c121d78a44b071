package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/easel/pkg/scene"
)

// Loader implements ports.DiagramLoader over a YAML diagram document on
// disk. Load re-reads the file every time, so a reload triggered by Watch
// always sees the latest content.
type Loader struct {
	path string
}

// NewLoader creates a loader for the diagram document at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the watched document path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and parses the diagram document.
func (l *Loader) Load(ctx context.Context) (*scene.Diagram, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read diagram: %w", err)
	}
	return scene.Parse(data)
}

// Save writes the diagram back to the document atomically.
func (l *Loader) Save(ctx context.Context, d *scene.Diagram) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure diagram directory: %w", err)
		}
	}
	return writeAtomic(l.path, data)
}

// Watch implements ports.Watchable. The returned channel receives a signal
// whenever the diagram document changes; bursts of filesystem events
// coalesce into a single pending signal.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start diagram watcher: %w", err)
	}

	// Watch the directory, not the file: editors and writeAtomic replace
	// the document by rename, which silently drops a direct file watch.
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(l.path)
	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
					// A signal is already pending; the reload will
					// pick up this change too.
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}
