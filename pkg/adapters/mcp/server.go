package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/historyviewer"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Viewer defines the operations the MCP server exposes as tools.
type Viewer interface {
	Dispatch(ctx context.Context, sessionID string, actions ...domain.Action) (domain.CompareSelection, error)
	Selection(ctx context.Context, sessionID string) (domain.CompareSelection, error)
	Versions(ctx context.Context, ref domain.RecordRef) ([]*domain.Version, error)
	Version(ctx context.Context, ref domain.RecordRef, version int) (*domain.Version, error)
	Compare(ctx context.Context, ref domain.RecordRef, from, to int) (*domain.Comparison, error)
	Transform(ctx context.Context, fields []domain.Field, source any) ([]domain.Field, error)
}

// SelectionResponse is the structured result of the selection tools.
type SelectionResponse struct {
	SessionID string                   `json:"session_id" jsonschema_description:"The session the selection belongs to"`
	Phase     domain.Phase             `json:"phase" jsonschema_description:"idle, selecting_from, selecting_to or comparing"`
	Selection *domain.CompareSelection `json:"selection" jsonschema_description:"The compare selection snapshot"`
}

// FieldsResponse is the structured result of the diff tools.
type FieldsResponse struct {
	From   int                `json:"from,omitempty" jsonschema_description:"Version the values were compared with"`
	To     int                `json:"to,omitempty" jsonschema_description:"Version the form was built from"`
	Fields []domain.FieldSpec `json:"fields" jsonschema_description:"Read-only fields holding <ins>/<del> markup"`
}

// VersionsResponse is the structured result of list_versions.
type VersionsResponse struct {
	Versions []*domain.Version `json:"versions" jsonschema_description:"Versions, newest first"`
}

// Server wraps a Viewer and exposes it as an MCP Server.
type Server struct {
	viewer    Viewer
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(viewer Viewer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		viewer:    viewer,
		logger:    logger,
		mcpServer: server.NewMCPServer("historyviewer-mcp", strings.TrimSpace(historyviewer.Version)),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
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
	// TOOL: compare_fields
	s.mcpServer.AddTool(mcp.NewTool("compare_fields",
		mcp.WithDescription("Diff a form against comparison data. Every data field becomes read-only HTML with <ins>/<del> markup."),
		mcp.WithString("fields", mcp.Required(), mcp.Description("JSON array of fields: {type, name, title, kind, value, children}")),
		mcp.WithString("comparison", mcp.Required(), mcp.Description("JSON object mapping field names to the values to compare with")),
		mcp.WithOutputSchema[FieldsResponse](),
	), mcp.NewStructuredToolHandler(s.handleCompareFields))

	// TOOL: compare_versions
	s.mcpServer.AddTool(mcp.NewTool("compare_versions",
		mcp.WithDescription("Diff two stored versions of a record."),
		mcp.WithString("class", mcp.Required(), mcp.Description("Record class")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Version to compare with")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Version the form is built from")),
		mcp.WithOutputSchema[FieldsResponse](),
	), mcp.NewStructuredToolHandler(s.handleCompareVersions))

	// TOOL: list_versions
	s.mcpServer.AddTool(mcp.NewTool("list_versions",
		mcp.WithDescription("List the versions of a record, newest first."),
		mcp.WithString("class", mcp.Required(), mcp.Description("Record class")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
		mcp.WithOutputSchema[VersionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListVersions))

	// TOOL: dispatch_selection
	s.mcpServer.AddTool(mcp.NewTool("dispatch_selection",
		mcp.WithDescription("Apply compare-selection actions (enter_compare, select_version, exit_compare, clear_slot, toggle_compare, show_version) to a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("actions", mcp.Required(), mcp.Description("JSON array of actions: {type, version: {version}, slot, checked}")),
		mcp.WithString("class", mcp.Description("Record class; with id, version numbers are resolved to full descriptors")),
		mcp.WithString("id", mcp.Description("Record ID")),
		mcp.WithOutputSchema[SelectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: get_selection
	s.mcpServer.AddTool(mcp.NewTool("get_selection",
		mcp.WithDescription("Get the compare selection of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SelectionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetSelection))
}

// Handler methods for structured tools

func (s *Server) handleCompareFields(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FieldsResponse, error) {
	fieldsStr, _ := args["fields"].(string)
	comparisonStr, _ := args["comparison"].(string)

	var specs []domain.FieldSpec
	if err := json.Unmarshal([]byte(fieldsStr), &specs); err != nil {
		return FieldsResponse{}, fmt.Errorf("invalid fields: %w", err)
	}
	fields, err := domain.FieldsOf(specs)
	if err != nil {
		return FieldsResponse{}, fmt.Errorf("invalid fields: %w", err)
	}

	var comparison any
	if err := json.Unmarshal([]byte(comparisonStr), &comparison); err != nil {
		return FieldsResponse{}, fmt.Errorf("invalid comparison: %w", err)
	}

	out, err := s.viewer.Transform(ctx, fields, comparison)
	if err != nil {
		s.logger.Warn("MCP compare_fields failed", "err", err)
		return FieldsResponse{}, fmt.Errorf("compare failed: %w", err)
	}
	return FieldsResponse{Fields: domain.SpecsOf(out)}, nil
}

func (s *Server) handleCompareVersions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FieldsResponse, error) {
	ref := recordRef(args)
	from, to := intArg(args, "from"), intArg(args, "to")

	cmp, err := s.viewer.Compare(ctx, ref, from, to)
	if err != nil {
		return FieldsResponse{}, fmt.Errorf("compare failed: %w", err)
	}
	return FieldsResponse{From: from, To: to, Fields: domain.SpecsOf(cmp.Fields)}, nil
}

func (s *Server) handleListVersions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (VersionsResponse, error) {
	versions, err := s.viewer.Versions(ctx, recordRef(args))
	if err != nil {
		return VersionsResponse{}, fmt.Errorf("list failed: %w", err)
	}
	out := make([]*domain.Version, len(versions))
	for i, v := range versions {
		out[i] = v.Descriptor()
	}
	return VersionsResponse{Versions: out}, nil
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SelectionResponse, error) {
	sessionID, _ := args["session_id"].(string)
	actionsStr, _ := args["actions"].(string)

	var envelopes []domain.ActionEnvelope
	if err := json.Unmarshal([]byte(actionsStr), &envelopes); err != nil {
		return SelectionResponse{}, fmt.Errorf("invalid actions: %w", err)
	}

	ref := recordRef(args)
	resolve := ref.Class != "" && ref.ID != ""

	actions := make([]domain.Action, 0, len(envelopes))
	for _, env := range envelopes {
		if resolve && env.Version != nil {
			v, err := s.viewer.Version(ctx, ref, env.Version.Version)
			if err != nil {
				return SelectionResponse{}, err
			}
			env.Version = v
		}
		a, err := env.Action()
		if err != nil {
			return SelectionResponse{}, err
		}
		actions = append(actions, a)
	}

	sel, err := s.viewer.Dispatch(ctx, sessionID, actions...)
	if err != nil {
		return SelectionResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return SelectionResponse{SessionID: sessionID, Phase: sel.Phase(), Selection: &sel}, nil
}

func (s *Server) handleGetSelection(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SelectionResponse, error) {
	sessionID, _ := args["session_id"].(string)
	sel, err := s.viewer.Selection(ctx, sessionID)
	if err != nil {
		return SelectionResponse{}, err
	}
	return SelectionResponse{SessionID: sessionID, Phase: sel.Phase(), Selection: &sel}, nil
}

func recordRef(args map[string]interface{}) domain.RecordRef {
	class, _ := args["class"].(string)
	id, _ := args["id"].(string)
	return domain.RecordRef{Class: class, ID: id}
}

// intArg reads a number argument; JSON numbers arrive as float64.
func intArg(args map[string]interface{}, name string) int {
	switch n := args[name].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}
