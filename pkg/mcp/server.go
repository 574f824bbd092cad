// Package mcp exposes the generator catalog as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transports accepted by RunServer.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServerFactory creates and runs MCP servers.
type ServerFactory struct {
	Impl   *mcp.Implementation
	logger *slog.Logger
}

// NewServerFactory creates a new server factory.
func NewServerFactory(name, version string, logger *slog.Logger) *ServerFactory {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ServerFactory{
		Impl: &mcp.Implementation{
			Name:    name,
			Version: version,
		},
		logger: logger,
	}
}

// CreateServer creates a server with the handler's tools registered.
func (f *ServerFactory) CreateServer(h *Handler) *mcp.Server {
	server := mcp.NewServer(f.Impl, &mcp.ServerOptions{})
	h.Register(server)
	return server
}

// RunServer runs the server over the given transport until ctx is done.
// addr is only used by the SSE transport.
func (f *ServerFactory) RunServer(ctx context.Context, server *mcp.Server, transport, addr string) error {
	switch transport {
	case TransportStdio:
		f.logger.Info("starting MCP server", "transport", transport)
		return server.Run(ctx, &mcp.StdioTransport{})

	case TransportSSE:
		sseHandler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
			return server
		}, nil)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		httpServer := &http.Server{Addr: addr, Handler: sseHandler}
		go func() {
			<-ctx.Done()
			_ = httpServer.Close()
		}()

		f.logger.Info("starting MCP server", "transport", transport, "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	default:
		return fmt.Errorf("unsupported transport: %s", transport)
	}
}
