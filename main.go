package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/krakend/doxsearch/internal/config"
	"github.com/krakend/doxsearch/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	version     = "0.2.0"
	serverName  = "doxsearch"
	description = "MCP server answering lookups over Doxygen documentation search indexes"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	// Set up logging to stderr (MCP uses stdout for protocol)
	log.SetOutput(os.Stderr)
	log.Printf("%s v%s starting...", serverName, version)

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	tools.Configure(cfg)

	// Create MCP server
	server := createMCPServer()

	if err := registerTools(server); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	log.Printf("✓ Server ready and waiting for connections")

	// Set up cleanup on shutdown
	defer func() {
		if err := tools.CloseDocSearch(); err != nil {
			log.Printf("Error closing doc search: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run server with stdio transport
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Printf("Server error: %v", err)
	}
}

// createMCPServer initializes the MCP server
func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: description,
		},
	)

	log.Printf("Server initialized: %s v%s", serverName, version)
	return server
}

// registerTools registers all MCP tools
func registerTools(server *mcp.Server) error {
	toolCount := 0

	// Documentation search tools (3 tools)
	if err := tools.RegisterDocSearchTools(server); err != nil {
		return fmt.Errorf("failed to register doc search tools: %w", err)
	}
	toolCount += 3

	// Search data validation (1 tool)
	tools.RegisterValidationTools(server)
	toolCount++

	log.Printf("✓ All tools registered: %d tools (lookup + search + refresh + validation)", toolCount)
	return nil
}
