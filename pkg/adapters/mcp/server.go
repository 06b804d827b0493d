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

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/internal/dto"
	"github.com/aretw0/kiteflow/internal/presentation/graph"
	"github.com/aretw0/kiteflow/pkg/runner"
)

const (
	GraphURI = "kiteflow://graph"
	FlowURI  = "kiteflow://flow"
)

// Server wraps a kiteflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    *kiteflow.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *kiteflow.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("kiteflow-mcp", strings.TrimSpace(kiteflow.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for hosts that pick their own transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
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
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
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

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: dispatch_event
	dispatchTool := mcp.NewTool("dispatch_event",
		mcp.WithDescription("Dispatch one event to the flow and report the response and effects."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Event kind, e.g. MESSAGE_CREATE")),
		mcp.WithString("payload", mcp.Description("JSON object with the event payload (optional)")),
		mcp.WithString("id", mcp.Description("Correlation id (optional, generated when empty)")),
		mcp.WithOutputSchema[dto.DispatchResponse](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: list_events
	s.mcpServer.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List the event kinds and commands the flow subscribes to."),
	), s.handleListEvents)
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dto.DispatchResponse, error) {
	req, err := dto.DecodeDispatchRequest(args)
	if err != nil {
		return dto.DispatchResponse{}, err
	}
	event, err := req.Event()
	if err == nil {
		event, err = runner.SanitizeEvent(event)
	}
	if err != nil {
		s.logger.Warn("MCP dispatch: Event rejected", "error", err)
		return dto.DispatchResponse{}, fmt.Errorf("invalid event: %w", err)
	}

	res, resp := s.engine.Dispatch(ctx, event)
	if !resp.Success {
		s.logger.Debug("MCP dispatch failed", "event_id", res.EventID, "code", resp.Error.Code)
	}
	return dto.NewDispatchResponse(res, resp), nil
}

func (s *Server) handleListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(dto.NewManifest(s.engine))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode manifest: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: kiteflow://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Flow Diagram",
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)

	// EXPOSE: kiteflow://flow
	s.mcpServer.AddResource(mcp.NewResource(FlowURI, "Flow Definition",
		mcp.WithMIMEType("application/json"),
	), s.readFlow)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/plain",
			Text:     graph.GenerateMermaid(s.engine.Flow(), nil),
		},
	}, nil
}

func (s *Server) readFlow(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.Flow())
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FlowURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
