package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arturoeanton/go-module-pack/internal/middleware"
)

// MCPHandler serves the MCP streamable HTTP transport on /mcp.
//
// The transport runs stateless with GET streaming disabled: every POST is
// answered on its own, so replicas need no sticky sessions and the Fiber
// write timeout never cuts a long-lived stream.
type MCPHandler struct {
	transport http.Handler
}

// NewMCPHandler creates a new MCP handler for s.
func NewMCPHandler(s *server.MCPServer, logger *slog.Logger) *MCPHandler {
	return &MCPHandler{
		transport: server.NewStreamableHTTPServer(s,
			server.WithStateLess(true),
			server.WithDisableStreaming(true),
			server.WithHTTPContextFunc(identityContext),
			server.WithLogger(transportLogger{logger}),
		),
	}
}

// Register sets up MCP routes.
func (h *MCPHandler) Register(router fiber.Router) {
	router.All("/mcp", adaptor.HTTPHandlerWithContext(h.transport))
}

// identityContext hands the identity verified by BearerAuth to tool handlers.
func identityContext(ctx context.Context, r *http.Request) context.Context {
	fiberCtx, ok := adaptor.LocalContextFromHTTPRequest(r)
	if !ok {
		return ctx
	}
	return middleware.ContextWithIdentity(ctx, middleware.IdentityFromContext(fiberCtx))
}

// transportLogger routes mcp-go transport messages to slog.
type transportLogger struct {
	logger *slog.Logger
}

func (l transportLogger) Infof(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "mcp-transport")
}

func (l transportLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "mcp-transport")
}
