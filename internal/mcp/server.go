// Package mcp exposes dice rolling and generator composition as MCP tools
// over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/louisbranch/tablegen/internal/compose"
	"github.com/louisbranch/tablegen/internal/dice"
	"github.com/louisbranch/tablegen/internal/generator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "tablegen"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP tools over one loaded collection. Tool calls share
// the collection and composer; each call seeds its own rng.
type Server struct {
	mcpServer  *mcp.Server
	collection *generator.Collection
	composer   *compose.Composer
}

// New creates an MCP server over collection. Options configure the composer.
func New(collection *generator.Collection, opts ...compose.Option) (*Server, error) {
	if collection == nil {
		return nil, fmt.Errorf("generator collection is required")
	}
	s := &Server{
		mcpServer:  mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		collection: collection,
		composer:   compose.New(collection, opts...),
	}
	mcp.AddTool(s.mcpServer, RollTool(), RollHandler())
	mcp.AddTool(s.mcpServer, GenerateTool(), s.GenerateHandler())
	mcp.AddTool(s.mcpServer, ListGeneratorsTool(), s.ListGeneratorsHandler())
	return s, nil
}

// Len reports how many generators the server exposes.
func (s *Server) Len() int {
	if s == nil {
		return 0
	}
	return s.collection.Len()
}

// Serve runs the server on stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if err := s.mcpServer.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// collectRolls appends every die of the tree, depth first.
func collectRolls(node compose.Node, out *[]dice.Die) {
	rec, ok := node.(*compose.RecursiveNode)
	if !ok {
		return
	}
	*out = append(*out, rec.Roll...)
	for _, child := range rec.Children {
		collectRolls(child, out)
	}
}
