package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/go-module-pack/internal/adapter/ai"
	"github.com/arturoeanton/go-module-pack/internal/adapter/auth"
	"github.com/arturoeanton/go-module-pack/internal/adapter/introspect"
	"github.com/arturoeanton/go-module-pack/internal/adapter/store"
	"github.com/arturoeanton/go-module-pack/internal/mcp"
	"github.com/arturoeanton/go-module-pack/internal/port"
	"github.com/arturoeanton/go-module-pack/internal/service"
	"github.com/arturoeanton/go-module-pack/pkg/config"
)

const version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "modpack",
		Short: "Serve a module's indexed documentation as MCP tools",
		Long: `modpack exposes the documentation of one module, indexed ahead of time in a
vector store, as a small set of tools that agents can call over the Model
Context Protocol: summary, docstring search, source code and docstring lookup,
usage docs search, and live introspection of the installed module.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd())
	root.AddCommand(newToolsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// ── Configuration ────────────────────────────────────────────────
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			logger.Info("starting module pack",
				"module", cfg.ModuleName,
				"collection", cfg.Collection,
				"transport", cfg.Transport,
				"introspection", cfg.IntrospectMode,
			)

			// ── Adapters ─────────────────────────────────────────────────────
			index, err := store.NewVectorIndex(ctx, store.Options{
				URL:    cfg.VectorStoreURL,
				APIKey: cfg.VectorStoreAPIKey,
				Table:  cfg.RecordsTable,
			}, logger)
			if err != nil {
				return fmt.Errorf("vector store: %w", err)
			}
			defer index.Close()

			encoder, err := ai.NewEncoder(ai.Config{
				Provider: cfg.EncoderProvider,
				Model:    cfg.EncoderModel,
				BaseURL:  cfg.EncoderURL,
				APIKey:   cfg.EncoderAPIKey,
			})
			if err != nil {
				return fmt.Errorf("encoder: %w", err)
			}
			logger.Info("text encoder ready", "model", encoder.ModelID())

			inspector, err := introspect.New(introspect.Config{
				Mode:      cfg.IntrospectMode,
				PythonBin: cfg.PythonBin,
				Root:      cfg.IntrospectRoot,
			}, logger)
			if err != nil {
				return fmt.Errorf("introspection: %w", err)
			}

			var verifier port.TokenVerifier
			if cfg.Networked() {
				verifier = auth.NewGitHubVerifier(cfg.IdentityURL, cfg.OAuthClientID, logger)
			}

			// ── Services ─────────────────────────────────────────────────────
			svc := service.NewModuleQueryService(service.ModuleOptions{
				Module:     cfg.ModuleName,
				Collection: cfg.Collection,
			}, index, encoder, inspector, logger)

			registry, err := mcp.NewModuleRegistry(svc, logger)
			if err != nil {
				return err
			}

			// ── Transport ────────────────────────────────────────────────────
			srv, err := mcp.NewServer(mcp.Config{
				Name:      cfg.ServerName(),
				Version:   version,
				Module:    cfg.ModuleName,
				Transport: cfg.Transport,
				Host:      cfg.Host,
				Port:      cfg.Port,
			}, registry, verifier, logger)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool table for the configured module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			// listing never reaches the store, encoder or inspector
			svc := service.NewModuleQueryService(service.ModuleOptions{Module: cfg.ModuleName}, nil, nil, nil, logger)
			registry, err := mcp.NewModuleRegistry(svc, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARAMETERS")
			for _, tool := range registry.Tools() {
				params := "-"
				if n := len(tool.InputSchema.Properties); n > 0 {
					params = fmt.Sprintf("%d (%d required)", n, len(tool.InputSchema.Required))
				}
				fmt.Fprintf(w, "%s\t%s\n", tool.Name, params)
			}
			return w.Flush()
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes to w, never stdout: the stdio transport owns stdout.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}
