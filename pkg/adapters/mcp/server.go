// Package mcp exposes notebooks as Model Context Protocol tools, so that
// agents can edit and run cells.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/internal/logging"
	"github.com/aretw0/cado/internal/presentation/graph"
	"github.com/aretw0/cado/pkg/protocol"
	"github.com/aretw0/cado/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const notebooksURI = "cado://notebooks"

// Server wraps a session manager and exposes it as an MCP Server.
type Server struct {
	mgr       *session.Manager
	handler   *protocol.Handler
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. It must not write to stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		mgr:       mgr,
		handler:   protocol.NewHandler(mgr),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("cado-mcp", cado.Version),
	}
	for _, opt := range opts {
		opt(s)
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server...")
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

func notebookID() mcp.ToolOption {
	return mcp.WithString("notebook_id", mcp.Required(), mcp.Description("ID of the notebook"))
}

func cellID() mcp.ToolOption {
	return mcp.WithString("cell_id", mcp.Required(), mcp.Description("ID of the cell"))
}

func stringArray(name, desc string) mcp.ToolOption {
	return mcp.WithArray(name, mcp.Required(), mcp.Description(desc), mcp.Items(map[string]any{"type": "string"}))
}

func (s *Server) registerTools() {
	tools := []struct {
		typ  protocol.Type
		tool mcp.Tool
	}{
		{protocol.TypeListNotebooks, mcp.NewTool("list_notebooks",
			mcp.WithDescription("List notebooks, most recently updated first."),
		)},
		{protocol.TypeNewNotebook, mcp.NewTool("create_notebook",
			mcp.WithDescription("Create a notebook holding one empty cell."),
			mcp.WithString("name", mcp.Description("Display name")),
		)},
		{protocol.TypeOpenNotebook, mcp.NewTool("get_notebook",
			mcp.WithDescription("Get a notebook with every cell, its status and output."),
			notebookID(),
		)},
		{protocol.TypeDeleteNotebook, mcp.NewTool("delete_notebook",
			mcp.WithDescription("Delete a notebook."),
			notebookID(),
		)},
		{protocol.TypeUpdateCellCode, mcp.NewTool("update_cell_code",
			mcp.WithDescription("Replace the code of a cell. The cell and its descendants expire."),
			notebookID(), cellID(),
			mcp.WithString("code", mcp.Required(), mcp.Description("New source code")),
		)},
		{protocol.TypeUpdateCellOutputName, mcp.NewTool("update_cell_output_name",
			mcp.WithDescription("Set the name other cells use to depend on this cell's output."),
			notebookID(), cellID(),
			mcp.WithString("output_name", mcp.Required(), mcp.Description("Output name, unique in the notebook; empty to clear")),
		)},
		{protocol.TypeUpdateCellInputNames, mcp.NewTool("update_cell_input_names",
			mcp.WithDescription("Declare the output names a cell consumes. Unknown names and cycles are rejected."),
			notebookID(), cellID(),
			stringArray("input_names", "Output names of parent cells"),
		)},
		{protocol.TypeUpdateCellLanguage, mcp.NewTool("update_cell_language",
			mcp.WithDescription("Set the language of a cell (hcl, python, shell...)."),
			notebookID(), cellID(),
			mcp.WithString("language", mcp.Required(), mcp.Description("Language tag")),
		)},
		{protocol.TypeRunCell, mcp.NewTool("run_cell",
			mcp.WithDescription("Run a cell, its stale ancestors first, then every descendant."),
			notebookID(), cellID(),
		)},
		{protocol.TypeRunAll, mcp.NewTool("run_all",
			mcp.WithDescription("Run every cell of the notebook in dependency order."),
			notebookID(),
		)},
		{protocol.TypeClearCell, mcp.NewTool("clear_cell",
			mcp.WithDescription("Expire a cell and its descendants."),
			notebookID(), cellID(),
		)},
		{protocol.TypeNewCell, mcp.NewTool("new_cell",
			mcp.WithDescription("Insert an empty cell."),
			notebookID(),
			mcp.WithNumber("index", mcp.Description("Position; appends when omitted")),
		)},
		{protocol.TypeDeleteCell, mcp.NewTool("delete_cell",
			mcp.WithDescription("Delete a cell. Dependents are left with an unresolved input."),
			notebookID(), cellID(),
		)},
		{protocol.TypeReorderCells, mcp.NewTool("reorder_cells",
			mcp.WithDescription("Reorder cells. The list must contain every cell id exactly once."),
			notebookID(),
			stringArray("cell_ids", "Cell ids in their new order"),
		)},
		{protocol.TypeUpdateNotebookName, mcp.NewTool("update_notebook_name",
			mcp.WithDescription("Rename the notebook."),
			notebookID(),
			mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
		)},
	}

	for _, t := range tools {
		tool := t.tool
		opt := mcp.WithOutputSchema[protocol.Response]()
		opt(&tool)
		s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(s.commandHandler(t.typ)))
	}

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the dependency graph of a notebook as a Mermaid flowchart."),
		notebookID(),
	), s.handleGetGraph)
}

// sessionCommands carry notebook_id as a field instead of an address.
var sessionCommands = map[protocol.Type]bool{
	protocol.TypeListNotebooks:  true,
	protocol.TypeNewNotebook:    true,
	protocol.TypeOpenNotebook:   true,
	protocol.TypeDeleteNotebook: true,
}

func (s *Server) commandHandler(typ protocol.Type) func(context.Context, mcp.CallToolRequest, map[string]any) (protocol.Response, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (protocol.Response, error) {
		raw := make(map[string]any, len(args)+1)
		for k, v := range args {
			raw[k] = v
		}
		raw["type"] = string(typ)

		var id string
		if !sessionCommands[typ] {
			id, _ = raw["notebook_id"].(string)
			delete(raw, "notebook_id")
		}

		resp := s.handler.Handle(ctx, id, raw)
		if resp.Type == protocol.TypeErrorResponse {
			s.logger.Debug("MCP command failed", "type", typ, "kind", resp.Kind, "err", resp.Error)
			return resp, fmt.Errorf("%s: %s", resp.Kind, resp.Error)
		}
		return resp, nil
	}
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("notebook_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nb, err := s.mgr.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(nb, graph.Options{})), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(notebooksURI, "Notebooks",
		mcp.WithResourceDescription("Summaries of every stored notebook"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		details, err := s.mgr.Details(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list notebooks: %w", err)
		}
		data, err := json.Marshal(details)
		if err != nil {
			return nil, errors.Join(errors.New("failed to encode notebooks"), err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      notebooksURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
