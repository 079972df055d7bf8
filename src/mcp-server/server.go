// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/version"
	"github.com/mark3labs/mcp-go/server"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
//
// The version is initially set to the default from the version package,
// but can be overridden when calling Run() with a specific version string.
func GetVersion() string {
	return appVersion
}

// serverName is the MCP server identity advertised during initialize.
const serverName = "ccadb-chain-resolver"

// NewServer builds the MCP server with all chain audit tools registered.
// It is exposed separately from Run so tests can drive the server
// in-process without a stdio transport.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, def := range createTools() {
		s.AddTool(def.Tool, def.Handler)
	}

	return s
}

// Run starts the MCP server exposing the CCADB chain audit pipeline as tools.
//
// Server Lifecycle:
//  1. Register audit, forest rendering, and collision checking tools
//  2. Set up signal handling for graceful shutdown
//  3. Start stdio server with context cancellation support
//  4. Wait for either server error or shutdown signal
//
// Graceful Shutdown:
//   - Responds to SIGINT (Ctrl+C) and SIGTERM signals
//   - Returns a wrapped context error on signal-based shutdown
//
// Parameters:
//   - version: Version string to advertise (e.g., "0.3.1")
//
// Returns:
//   - error: Server startup or runtime error, or graceful shutdown signal
func Run(version string) error {
	// Set the version for GetVersion
	appVersion = version

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	s := NewServer(version)

	// Create stdio server to connect with our context
	stdioServer := server.NewStdioServer(s)

	// Start server with graceful shutdown support
	errChan := make(chan error, 1)
	go func() {
		errChan <- stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		// Graceful shutdown triggered by signal
		return fmt.Errorf("server shutdown: %w", ctx.Err())
	}
}
