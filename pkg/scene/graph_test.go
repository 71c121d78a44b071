package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/pkg/domain"
)

func addNode(t *testing.T, g *Graph, n *Node, parentID string) *Node {
	t.Helper()
	require.NoError(t, g.AddNode(n, parentID))
	return n
}

func nodeAt(id string, x, y float64) *Node {
	return &Node{ID: id, Kind: domain.KindNode, Transform: domain.Translate(domain.Point{X: x, Y: y})}
}

func socketAt(id, direction string, x, y float64) *Node {
	return &Node{ID: id, Kind: domain.KindSocket, Direction: direction, Transform: domain.Translate(domain.Point{X: x, Y: y})}
}

func TestAddNode(t *testing.T) {
	t.Run("attaches to root by default", func(t *testing.T) {
		g := NewGraph()
		n := addNode(t, g, nodeAt("api", 10, 10), "")

		assert.Equal(t, g.Root(), n.Parent())
		assert.Equal(t, []*Node{n}, g.Nodes())
	})

	t.Run("applies default extents", func(t *testing.T) {
		g := NewGraph()
		n := addNode(t, g, nodeAt("api", 0, 0), "")
		s := addNode(t, g, socketAt("api-out", domain.DirectionOutput, 152, 42), "api")

		assert.Equal(t, DefaultNodeWidth, n.Width)
		assert.Equal(t, DefaultNodeHeight, n.Height)
		assert.Equal(t, DefaultSocketSize, s.Width)
		assert.Equal(t, DefaultSocketSize, s.Height)
	})

	t.Run("rejects duplicate IDs", func(t *testing.T) {
		g := NewGraph()
		addNode(t, g, nodeAt("api", 0, 0), "")

		err := g.AddNode(nodeAt("api", 5, 5), "")
		assert.ErrorIs(t, err, domain.ErrDuplicateNode)
	})

	t.Run("rejects unknown parent", func(t *testing.T) {
		g := NewGraph()
		err := g.AddNode(nodeAt("api", 0, 0), "ghost")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("sockets attach to nodes only", func(t *testing.T) {
		g := NewGraph()
		err := g.AddNode(socketAt("loose", domain.DirectionInput, 0, 0), "")
		assert.ErrorContains(t, err, "must attach to a node")
	})

	t.Run("nodes cannot nest under sockets", func(t *testing.T) {
		g := NewGraph()
		addNode(t, g, nodeAt("api", 0, 0), "")
		addNode(t, g, socketAt("api-out", domain.DirectionOutput, 0, 0), "api")

		err := g.AddNode(nodeAt("inner", 0, 0), "api-out")
		assert.ErrorContains(t, err, "cannot nest under a socket")
	})

	t.Run("only one scene root", func(t *testing.T) {
		g := NewGraph()
		err := g.AddNode(&Node{ID: "root2", Kind: domain.KindScene}, "")
		assert.ErrorContains(t, err, "already exists")
	})
}

func TestRemoveNode(t *testing.T) {
	g := NewGraph()
	addNode(t, g, nodeAt("vpc", 10, 10), "")
	addNode(t, g, nodeAt("api", 20, 20), "vpc")
	addNode(t, g, socketAt("api-out", domain.DirectionOutput, 152, 42), "api")
	addNode(t, g, nodeAt("db", 400, 10), "")
	addNode(t, g, socketAt("db-in", domain.DirectionInput, -8, 42), "db")

	_, err := g.Connect("api-out", "db-in")
	require.NoError(t, err)

	t.Run("scene root is not removable", func(t *testing.T) {
		assert.Error(t, g.RemoveNode(RootID))
	})

	t.Run("unknown node", func(t *testing.T) {
		assert.ErrorIs(t, g.RemoveNode("ghost"), domain.ErrNodeNotFound)
	})

	t.Run("removes the subtree and touching edges", func(t *testing.T) {
		require.NoError(t, g.RemoveNode("vpc"))

		for _, id := range []string{"vpc", "api", "api-out"} {
			_, ok := g.Node(id)
			assert.False(t, ok, "%s should be gone", id)
		}
		_, ok := g.Node("db")
		assert.True(t, ok)
		assert.Empty(t, g.AllEdges(), "edge into the removed subtree is deleted outright")
	})
}

func TestWorldTransform(t *testing.T) {
	g := NewGraph()
	addNode(t, g, nodeAt("vpc", 10, 10), "")
	addNode(t, g, nodeAt("api", 20, 30), "vpc")

	t.Run("composes ancestor translations", func(t *testing.T) {
		api, _ := g.Node("api")
		w := g.WorldTransform(api)
		assert.Equal(t, domain.Point{X: 30, Y: 40}, w.Translation)
		assert.Equal(t, 1.0, w.ScaleX)
	})

	t.Run("root view transform scales descendants", func(t *testing.T) {
		g.Root().Transform = domain.Transform{Translation: domain.Point{X: 5, Y: 5}, ScaleX: 2, ScaleY: 2}
		defer func() { g.Root().Transform = domain.Identity() }()

		api, _ := g.Node("api")
		w := g.WorldTransform(api)
		assert.Equal(t, domain.Point{X: 65, Y: 85}, w.Translation)
		assert.Equal(t, 2.0, w.ScaleX)
		assert.Equal(t, 2.0, w.ScaleY)
	})
}

func TestHitTest(t *testing.T) {
	g := NewGraph()
	addNode(t, g, nodeAt("under", 10, 10), "")
	addNode(t, g, socketAt("under-in", domain.DirectionInput, -8, 42), "under")
	addNode(t, g, nodeAt("over", 100, 50), "")

	t.Run("misses fall through to the backdrop", func(t *testing.T) {
		hit := g.HitTest(domain.Point{X: 500, Y: 500})
		assert.Equal(t, domain.KindScene, hit.Kind)
		assert.Equal(t, RootID, hit.ID)
	})

	t.Run("finds a node", func(t *testing.T) {
		hit := g.HitTest(domain.Point{X: 20, Y: 20})
		assert.Equal(t, "under", hit.ID)
		assert.Equal(t, domain.KindNode, hit.Kind)
	})

	t.Run("later siblings win where nodes overlap", func(t *testing.T) {
		hit := g.HitTest(domain.Point{X: 120, Y: 60})
		assert.Equal(t, "over", hit.ID)
	})

	t.Run("sockets win over their own node", func(t *testing.T) {
		hit := g.HitTest(domain.Point{X: 10, Y: 60})
		assert.Equal(t, "under-in", hit.ID)
		assert.Equal(t, domain.KindSocket, hit.Kind)
		assert.Equal(t, domain.DirectionInput, hit.Direction)
	})

	t.Run("box edges are inclusive", func(t *testing.T) {
		hit := g.HitTest(domain.Point{X: 100, Y: 50})
		assert.Equal(t, "over", hit.ID)
		hit = g.HitTest(domain.Point{X: 260, Y: 150})
		assert.Equal(t, "over", hit.ID)
	})

	t.Run("honors the view transform", func(t *testing.T) {
		g.Root().Transform = domain.Transform{ScaleX: 2, ScaleY: 2}
		defer func() { g.Root().Transform = domain.Identity() }()

		// "under" is at (10,10) local, so (20,20) on screen at zoom 2.
		hit := g.HitTest(domain.Point{X: 15, Y: 15})
		assert.Equal(t, RootID, hit.ID)
		hit = g.HitTest(domain.Point{X: 25, Y: 25})
		assert.Equal(t, "under", hit.ID)
	})

	t.Run("placeholders are still hit", func(t *testing.T) {
		p := socketAt("under-ghost", domain.DirectionOutput, 30, -8)
		p.Placeholder = true
		addNode(t, g, p, "under")

		hit := g.HitTest(domain.Point{X: 45, Y: 10})
		assert.Equal(t, "under-ghost", hit.ID)
		assert.True(t, hit.Placeholder)
	})
}

func TestAnchor(t *testing.T) {
	g := NewGraph()
	addNode(t, g, nodeAt("api", 10, 10), "")
	addNode(t, g, socketAt("api-in", domain.DirectionInput, -8, 42), "api")

	t.Run("socket center in scene space", func(t *testing.T) {
		p, err := g.Anchor("api-in")
		require.NoError(t, err)
		assert.Equal(t, domain.Point{X: 10, Y: 60}, p)
	})

	t.Run("unaffected by the view transform", func(t *testing.T) {
		g.Root().Transform = domain.Transform{Translation: domain.Point{X: -40, Y: 12}, ScaleX: 2, ScaleY: 2}
		defer func() { g.Root().Transform = domain.Identity() }()

		p, err := g.Anchor("api-in")
		require.NoError(t, err)
		assert.Equal(t, domain.Point{X: 10, Y: 60}, p)
	})

	t.Run("rejects non-sockets", func(t *testing.T) {
		_, err := g.Anchor("api")
		assert.ErrorIs(t, err, domain.ErrSocketNotFound)
	})
}

func TestSocket(t *testing.T) {
	g := NewGraph()
	addNode(t, g, nodeAt("api", 10, 10), "")
	addNode(t, g, socketAt("api-in", domain.DirectionInput, -8, 42), "api")

	s, ok := g.Socket("api-in")
	require.True(t, ok)
	assert.Equal(t, domain.DirectionInput, s.Direction)

	_, ok = g.Socket("api")
	assert.False(t, ok, "nodes must not resolve as sockets")
	_, ok = g.Socket("ghost")
	assert.False(t, ok)
}

func TestDeploymentAncestor(t *testing.T) {
	g := NewGraph()
	addNode(t, g, nodeAt("vpc", 0, 0), "")
	addNode(t, g, nodeAt("web", 30, 40), "vpc")
	addNode(t, g, socketAt("web-out", domain.DirectionOutput, 152, 42), "web")
	addNode(t, g, nodeAt("db", 400, 0), "")
	addNode(t, g, socketAt("db-in", domain.DirectionInput, -8, 42), "db")

	t.Run("nested node resolves its group", func(t *testing.T) {
		group, ok := g.DeploymentAncestor("web")
		require.True(t, ok)
		assert.Equal(t, "vpc", group.ID)
	})

	t.Run("top-level node has none", func(t *testing.T) {
		_, ok := g.DeploymentAncestor("vpc")
		assert.False(t, ok)
		_, ok = g.DeploymentAncestor("db")
		assert.False(t, ok)
	})

	t.Run("sockets resolve through their owning node", func(t *testing.T) {
		group, ok := g.DeploymentAncestor("web-out")
		require.True(t, ok)
		assert.Equal(t, "vpc", group.ID)

		_, ok = g.DeploymentAncestor("db-in")
		assert.False(t, ok, "socket on a top-level node is top level itself")
	})

	t.Run("unknown elements do not resolve", func(t *testing.T) {
		_, ok := g.DeploymentAncestor("ghost")
		assert.False(t, ok)
	})
}

func TestNewID(t *testing.T) {
	g := NewGraph()
	a, b := g.NewID(), g.NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
