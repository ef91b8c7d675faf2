// Package mcp exposes the module documentation tools over the Model Context
// Protocol, either on stdio or over HTTP behind bearer authentication.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/handler"
	"github.com/arturoeanton/go-module-pack/internal/middleware"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

// Transport modes.
const (
	TransportStdio          = "stdio"
	TransportHTTP           = "http"
	TransportStreamableHTTP = "streamable-http"
)

const shutdownTimeout = 10 * time.Second

// Config holds the transport configuration.
type Config struct {
	Name      string
	Version   string
	Module    string
	Transport string
	Host      string
	Port      int
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Option customizes a Server.
type Option func(*Server)

// WithStdio replaces the process stdin/stdout used by the stdio transport.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.stdin = in
		s.stdout = out
	}
}

// Server runs the tool registry on one transport. It can be run once.
type Server struct {
	cfg       Config
	registry  *Registry
	mcpServer *server.MCPServer
	verifier  port.TokenVerifier
	logger    *slog.Logger

	stdin  io.Reader
	stdout io.Writer

	started atomic.Bool
	appOnce sync.Once
	app     *fiber.App
}

// NewServer binds registry to a new MCP server. The HTTP transport requires a verifier.
func NewServer(cfg Config, registry *Registry, verifier port.TokenVerifier, logger *slog.Logger, opts ...Option) (*Server, error) {
	switch cfg.Transport {
	case TransportStdio:
	case TransportHTTP, TransportStreamableHTTP:
		if verifier == nil {
			return nil, fmt.Errorf("%s transport requires a token verifier", cfg.Transport)
		}
	default:
		return nil, fmt.Errorf("%w: %q", port.ErrUnknownTransport, cfg.Transport)
	}

	mcpServer := server.NewMCPServer(cfg.Name, cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	registry.Bind(mcpServer)

	s := &Server{
		cfg:       cfg,
		registry:  registry,
		mcpServer: mcpServer,
		verifier:  verifier,
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run serves until ctx is cancelled or the transport fails. A second call
// returns port.ErrAlreadyStarted.
func (s *Server) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return port.ErrAlreadyStarted
	}

	s.logger.Info("MCP server starting",
		"name", s.cfg.Name,
		"transport", s.cfg.Transport,
		"tools", len(s.registry.Tools()),
	)

	if s.cfg.Transport == TransportStdio {
		return s.runStdio(ctx)
	}
	return s.runHTTP(ctx)
}

func (s *Server) runStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	s.logger.Info("MCP server stopped", "transport", s.cfg.Transport)
	return nil
}

func (s *Server) runHTTP(ctx context.Context) error {
	app := s.App()
	addr := s.cfg.Addr()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP HTTP transport listening", "addr", addr)
		if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Warn("MCP HTTP transport shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("MCP server stopped", "transport", s.cfg.Transport)
	return nil
}

// App returns the Fiber application serving the HTTP transport.
func (s *Server) App() *fiber.App {
	s.appOnce.Do(func() {
		app := fiber.New(fiber.Config{
			AppName:      s.cfg.Name,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		})

		app.Use(recover.New())
		app.Use(middleware.AuditMiddleware(middleware.NewLogAuditWriter(s.logger), s.logger))

		// Public routes
		handler.NewHealthHandler(s.cfg.Name, s.cfg.Version, s.cfg.Module).Register(app)

		// Protected routes
		gate := middleware.BearerAuth(s.verifier, s.logger, domain.ScopeUser)
		app.Use("/mcp", gate)
		app.Use("/tools", gate)
		handler.NewMCPHandler(s.mcpServer, s.logger).Register(app)
		handler.NewToolsHandler(s.registry).Register(app)

		s.app = app
	})
	return s.app
}
