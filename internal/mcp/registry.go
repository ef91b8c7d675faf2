package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arturoeanton/go-module-pack/internal/middleware"
	"github.com/arturoeanton/go-module-pack/internal/port"
	"github.com/arturoeanton/go-module-pack/internal/service"
)

type registeredTool struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// Registry is the fixed tool table of one server instance. Names are unique;
// the table is filled once at startup and never changes afterwards.
type Registry struct {
	tools  []registeredTool
	index  map[string]int
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{index: make(map[string]int), logger: logger}
}

// Add registers a tool. A name already present yields port.ErrDuplicateTool.
func (r *Registry) Add(tool mcp.Tool, handler server.ToolHandlerFunc) error {
	if _, ok := r.index[tool.Name]; ok {
		return fmt.Errorf("%w: %s", port.ErrDuplicateTool, tool.Name)
	}
	r.index[tool.Name] = len(r.tools)
	r.tools = append(r.tools, registeredTool{tool: tool, handler: r.logged(tool.Name, handler)})
	return nil
}

// Tools returns the registered tool definitions in registration order.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.tool
	}
	return out
}

// Bind adds every registered tool to s.
func (r *Registry) Bind(s *server.MCPServer) {
	for _, t := range r.tools {
		s.AddTool(t.tool, t.handler)
	}
}

func (r *Registry) logged(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, request)

		attrs := []any{"tool", name, "duration_ms", time.Since(start).Milliseconds()}
		if id := middleware.IdentityFromContext(ctx); id != nil {
			attrs = append(attrs, "sub", id.Subject)
		}
		if err != nil {
			r.logger.Error("tool call failed", append(attrs, "error", err)...)
			return result, err
		}
		r.logger.Debug("tool call", attrs...)
		return result, nil
	}
}

// NewModuleRegistry registers the documentation tools for the module served by svc.
func NewModuleRegistry(svc *service.ModuleQueryService, logger *slog.Logger) (*Registry, error) {
	h := &toolHandler{svc: svc}
	m := svc.Module()
	r := NewRegistry(logger)

	for _, t := range []registeredTool{
		{summaryTool(m), h.summary},
		{searchDocstringTool(m), h.searchDocstring},
		{sourceCodeTool(m), h.sourceCode},
		{docstringTool(m), h.docstring},
		{searchDocsTool(m), h.searchDocs},
		{liveDocstringTool(m), h.liveDocstring},
		{functionsTool(m), h.functions},
	} {
		if err := r.Add(t.tool, t.handler); err != nil {
			return nil, err
		}
	}
	return r, nil
}
