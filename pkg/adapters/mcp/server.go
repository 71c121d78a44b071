// Package mcp exposes the interaction engine to agents over the Model
// Context Protocol: pointer tools drive the gesture machine, the diagram
// tool and resource serve a flattened scene snapshot, and session tools
// gate the mutating gestures.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/catalog"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// StateResponse aligns with the HTTP EngineState schema so MCP and REST
// clients see the same shape.
type StateResponse struct {
	State       string  `json:"state" jsonschema_description:"Current gesture machine state"`
	Zoom        float64 `json:"zoom" jsonschema_description:"View scale factor"`
	PendingNode string  `json:"pending_node,omitempty" jsonschema_description:"ID of the pending node while a node add is in flight"`
	Kind        string  `json:"kind" jsonschema_description:"Diagram kind (component or deployment)"`
	Scope       string  `json:"scope,omitempty" jsonschema_description:"Deployment node the view is drilled into"`
	Editing     bool    `json:"editing" jsonschema_description:"Whether an edit session is open"`
}

// NodeAddResponse reports the placeholder created by begin_node_add.
type NodeAddResponse struct {
	NodeID string `json:"node_id" jsonschema_description:"ID of the pending node"`
	State  string `json:"state" jsonschema_description:"Gesture machine state after the begin"`
}

// Engine defines the interface required by the MCP server to drive Easel.
type Engine interface {
	PointerDown(ctx context.Context, at domain.Point)
	PointerMove(ctx context.Context, at domain.Point)
	PointerUp(ctx context.Context, at domain.Point)
	Wheel(ctx context.Context, at domain.Point, magnitude float64)
	BeginNodeAdd(ctx context.Context, name, nodeType string, at domain.Point) (*scene.Node, error)
	AddFromCatalog(ctx context.Context, entryName string, at domain.Point) (*scene.Node, error)
	OpenSession(ctx context.Context, name, note string) (*domain.EditSession, error)
	SaveSession(ctx context.Context) (*domain.EditSession, error)
	CancelSession(ctx context.Context) (*domain.EditSession, error)
	EditingActive() bool
	DeploymentNode() string
	DiagramKind() string
	State() string
	PendingNode() string
	ZoomFactor() float64
	Selection() *scene.Selection
	Snapshot(fn func(*scene.Diagram))
	Catalog() *catalog.Catalog
}

// Server wraps the Easel engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("easel-mcp", strings.TrimSpace(easel.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: pointer_down / pointer_move / pointer_up
	downTool := mcp.NewTool("pointer_down",
		mcp.WithDescription("Press the pointer at a screen position. Starts the gesture the target under the pointer affords: drag on a node, connect on an output socket, deselect on the background."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Screen X coordinate")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Screen Y coordinate")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(downTool, mcp.NewStructuredToolHandler(s.handlePointerDown))

	moveTool := mcp.NewTool("pointer_move",
		mcp.WithDescription("Move the pointer, advancing the gesture in flight."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Screen X coordinate")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Screen Y coordinate")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(moveTool, mcp.NewStructuredToolHandler(s.handlePointerMove))

	upTool := mcp.NewTool("pointer_up",
		mcp.WithDescription("Release the pointer, committing the gesture in flight."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Screen X coordinate")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Screen Y coordinate")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(upTool, mcp.NewStructuredToolHandler(s.handlePointerUp))

	// TOOL: zoom
	zoomTool := mcp.NewTool("zoom",
		mcp.WithDescription("Zoom the view about a screen position. Positive magnitudes zoom out; one wheel notch is magnitude 100."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Screen X coordinate of the pivot")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Screen Y coordinate of the pivot")),
		mcp.WithNumber("magnitude", mcp.Required(), mcp.Description("Wheel delta")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(zoomTool, mcp.NewStructuredToolHandler(s.handleZoom))

	// TOOL: begin_node_add
	addTool := mcp.NewTool("begin_node_add",
		mcp.WithDescription("Begin a node-add gesture. Give either a catalog entry name or an explicit name and type. The pending node follows pointer_move and a pointer_down places it. Requires an open edit session."),
		mcp.WithString("entry", mcp.Description("Catalog entry name (takes precedence over name/type)")),
		mcp.WithString("name", mcp.Description("Display name for the new node")),
		mcp.WithString("type", mcp.Description("Schema type for the new node")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Screen X coordinate to center the pending node on")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Screen Y coordinate to center the pending node on")),
		mcp.WithOutputSchema[NodeAddResponse](),
	)
	s.mcpServer.AddTool(addTool, mcp.NewStructuredToolHandler(s.handleBeginNodeAdd))

	// TOOL: get_diagram
	s.mcpServer.AddTool(mcp.NewTool("get_diagram",
		mcp.WithDescription("Get the diagram snapshot: nodes with socket anchors, edges, selection and view state. Positions are scene-space; compose with pan and zoom for screen coordinates."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.snapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: search_catalog
	s.mcpServer.AddTool(mcp.NewTool("search_catalog",
		mcp.WithDescription("Search the node-type palette. Fuzzy-matches entry names; an empty query lists every entry."),
		mcp.WithString("q", mcp.Description("Search query")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		c := s.engine.Catalog()
		if c == nil {
			return mcp.NewToolResultError("no catalog configured"), nil
		}
		query, _ := request.GetArguments()["q"].(string)
		jsonBytes, _ := json.Marshal(c.Search(query))
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: open_session / save_session / cancel_session
	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open an edit session. Mutating gestures (drag, connect, node add) apply only while one is open."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Session name")),
		mcp.WithString("note", mcp.Description("Free-form note")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		name, _ := args["name"].(string)
		note, _ := args["note"].(string)
		sess, err := s.engine.OpenSession(ctx, name, note)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("open session: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(sess)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("save_session",
		mcp.WithDescription("Commit and close the current edit session."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess, err := s.engine.SaveSession(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save session: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(sess)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("cancel_session",
		mcp.WithDescription("Discard and close the current edit session."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess, err := s.engine.CancelSession(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cancel session: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(sess)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handlePointerDown(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	s.engine.PointerDown(ctx, pointArg(args))
	return s.state(), nil
}

func (s *Server) handlePointerMove(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	s.engine.PointerMove(ctx, pointArg(args))
	return s.state(), nil
}

func (s *Server) handlePointerUp(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	s.engine.PointerUp(ctx, pointArg(args))
	return s.state(), nil
}

func (s *Server) handleZoom(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	magnitude, _ := args["magnitude"].(float64)
	s.engine.Wheel(ctx, pointArg(args), magnitude)
	return s.state(), nil
}

func (s *Server) handleBeginNodeAdd(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (NodeAddResponse, error) {
	at := pointArg(args)

	var node *scene.Node
	var err error
	if entry, _ := args["entry"].(string); entry != "" {
		node, err = s.engine.AddFromCatalog(ctx, entry, at)
	} else {
		name, _ := args["name"].(string)
		nodeType, _ := args["type"].(string)
		if name == "" {
			return NodeAddResponse{}, fmt.Errorf("entry or name required")
		}
		node, err = s.engine.BeginNodeAdd(ctx, name, nodeType, at)
	}
	if err != nil {
		return NodeAddResponse{}, fmt.Errorf("begin node add: %w", err)
	}
	return NodeAddResponse{NodeID: node.ID, State: s.engine.State()}, nil
}

func pointArg(args map[string]interface{}) domain.Point {
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)
	return domain.Point{X: x, Y: y}
}

func (s *Server) state() StateResponse {
	return StateResponse{
		State:       s.engine.State(),
		Zoom:        s.engine.ZoomFactor(),
		PendingNode: s.engine.PendingNode(),
		Kind:        s.engine.DiagramKind(),
		Scope:       s.engine.DeploymentNode(),
		Editing:     s.engine.EditingActive(),
	}
}

func (s *Server) registerResources() {
	// EXPOSE: easel://diagram
	s.mcpServer.AddResource(mcp.NewResource("easel://diagram", "Current Diagram Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot diagram: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "easel://diagram",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
