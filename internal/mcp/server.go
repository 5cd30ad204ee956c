// ABOUTME: MCP server setup for the healthtrends log store and trend engine.
// ABOUTME: Wraps MCP server with storage Repository and chart service access.
package mcp

import (
	"context"

	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/hashicorp/go-hclog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer   *mcp.Server
	repo        storage.Repository
	normalizer  *trends.Normalizer
	charts      *chart.Service
	defaultUser string
	logger      hclog.Logger
}

// NewServer creates a new MCP server with the given storage. Tools called
// without a user_id act on defaultUser.
func NewServer(repo storage.Repository, normalizer *trends.Normalizer, defaultUser string, logger hclog.Logger) (*Server, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if normalizer == nil {
		normalizer = trends.NewNormalizer(nil, logger)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "healthtrends",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer:   mcpServer,
		repo:        repo,
		normalizer:  normalizer,
		charts:      chart.NewService(storage.NewFetcher(repo), normalizer, logger.Named("chart")),
		defaultUser: defaultUser,
		logger:      logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// user returns u, or the default user when u is empty.
func (s *Server) user(u string) string {
	if u != "" {
		return u
	}
	return s.defaultUser
}
