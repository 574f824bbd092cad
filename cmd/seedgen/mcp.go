package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/mcp"
)

// newMCPCmd creates the mcp subcommand
func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		addr      string
		watch     bool
		maxCount  int
		maxSize   int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the generator catalog to AI agents over MCP",
		Long: `Start a Model Context Protocol server exposing the tools list_generators
and generate_sample.

With --watch the configuration file and local schema documents are watched,
and the catalog is rebuilt whenever one of them changes.

Example:
  seedgen mcp
  seedgen mcp --transport sse --addr :8080 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.newSampler(ctx)
			if err != nil {
				return err
			}

			handler := mcp.NewHandler(s, a.cfg.Defaults, mcp.WithMaxCount(maxCount), mcp.WithMaxSize(maxSize), mcp.WithLogger(a.logger))
			factory := mcp.NewServerFactory("seedgen", version, a.logger)
			server := factory.CreateServer(handler)

			if watch {
				w, err := a.watchConfig(ctx, handler)
				if err != nil {
					return err
				}
				defer func() { _ = w.Stop() }()
			}

			// stdout carries JSON-RPC in stdio mode
			_, _ = fmt.Fprintf(a.stderr, "Starting MCP server (transport: %s, generators: %d)...\n", transport, len(s.Registry().Names()))
			return factory.RunServer(ctx, server, transport, addr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", mcp.TransportStdio, "Transport: stdio, sse")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address for the sse transport")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild the catalog when the configuration changes")
	cmd.Flags().IntVar(&maxCount, "max-count", mcp.DefaultMaxCount, "Largest count a single call may request")
	cmd.Flags().IntVar(&maxSize, "max-size", mcp.DefaultMaxSize, "Largest size a single call may request")
	return cmd
}

// watchConfig starts a watcher that reloads the configuration and swaps the
// handler's sampler. A reload that fails keeps the previous catalog.
func (a *app) watchConfig(ctx context.Context, handler *mcp.Handler) (*config.Watcher, error) {
	paths := append([]string{a.mgr.ConfigPath()}, a.mgr.LocalSources(a.cfg)...)
	w := config.NewWatcher(paths)

	w.AddHandler(func(event config.ChangeEvent) {
		if event.Type == config.ChangeError {
			a.logger.Warn("watch error", "path", event.Path, "error", event.Err)
			return
		}
		a.logger.Info("configuration changed, rebuilding catalog", "path", event.Path, "change", string(event.Type))

		cfg, err := a.mgr.Load()
		if err != nil {
			a.logger.Error("failed to reload config", "error", err)
			return
		}
		prev := a.cfg
		a.cfg = cfg
		s, err := a.newSampler(ctx)
		if err != nil {
			a.cfg = prev
			a.logger.Error("failed to rebuild catalog", "error", err)
			return
		}
		handler.SetSampler(s, cfg.Defaults)
		a.logger.Info("catalog rebuilt", "generators", len(s.Registry().Names()))
	})

	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
