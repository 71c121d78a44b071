package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/pkg/adapters/file"
	"github.com/aretw0/easel/pkg/domain"
	contract "github.com/aretw0/easel/pkg/ports/tests"
	"github.com/aretw0/easel/pkg/scene"
)

const checkoutDoc = `name: checkout
kind: component
nodes:
  - id: api
    name: API
    type: service
    position: {x: 40, y: 60}
  - id: db
    name: Database
    type: postgres
    position: {x: 400, y: 60}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(checkoutDoc), 0o644))
	return path
}

func TestFileLoader_Contract(t *testing.T) {
	loader := file.NewLoader(writeFixture(t))
	contract.DiagramLoaderContractTest(t, loader, "checkout", []string{"api", "db"})
}

func TestFileLoader_MissingFile(t *testing.T) {
	loader := file.NewLoader(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}

func TestFileLoader_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	loader := file.NewLoader(writeFixture(t))

	d, err := loader.Load(ctx)
	require.NoError(t, err)

	cache := &scene.Node{
		ID:        "cache",
		Kind:      domain.KindNode,
		Name:      "Cache",
		Type:      "redis",
		Transform: domain.Translate(domain.Point{X: 220, Y: 200}),
	}
	require.NoError(t, d.Graph.AddNode(cache, ""))
	require.NoError(t, loader.Save(ctx, d))

	reloaded, err := loader.Load(ctx)
	require.NoError(t, err)
	node, ok := reloaded.Graph.Node("cache")
	require.True(t, ok)
	assert.Equal(t, "redis", node.Type)
	assert.Equal(t, domain.Point{X: 220, Y: 200}, node.Transform.Translation)
}

func TestFileLoader_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := file.NewLoader(writeFixture(t))
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	d, err := loader.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, loader.Save(ctx, d))

	select {
	case _, ok := <-ch:
		require.True(t, ok, "watch channel closed before signaling")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}

	// Canceling the context shuts the watcher down and closes the channel.
	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watcher shutdown")
		}
	}
}

func TestFileLoader_WatchIgnoresSiblings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := writeFixture(t)
	loader := file.NewLoader(path)
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	sibling := filepath.Join(filepath.Dir(path), "other.yaml")
	require.NoError(t, os.WriteFile(sibling, []byte("name: other\n"), 0o644))

	select {
	case <-ch:
		t.Fatal("signal fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
