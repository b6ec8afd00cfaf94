// Package mcp exposes the engine over the Model Context Protocol, so MCP
// clients can browse worlds, create instances and play turns as tools.
package mcp

import (
	"context"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rybla/sva-engine/internal/handlers"
	"github.com/rybla/sva-engine/internal/storage"
)

type Server struct {
	engine *handlers.Engine
	worlds *storage.WorldLibrary
	logger *slog.Logger
	mcp    *sdk.Server
}

func NewServer(engine *handlers.Engine, worlds *storage.WorldLibrary, version string, logger *slog.Logger) *Server {
	s := &Server{
		engine: engine,
		worlds: worlds,
		logger: logger,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "sva-engine",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
