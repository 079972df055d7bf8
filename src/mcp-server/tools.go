// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDefinition pairs an MCP tool declaration with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// createTools creates and returns all MCP tool definitions with their handlers.
//
// The function defines the following tools:
//   - run_chain_audit: Runs the full audit pipeline over a CCADB export
//   - render_forest: Renders each root's walked tree as an ASCII diagram
//   - check_prefix_collisions: Checks a fingerprint set for short identifier collisions
//
// Each tool includes proper parameter definitions, descriptions, and default values
// as required by the MCP specification.
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("run_chain_audit",
				mcp.WithDescription("Run the CCADB trust-chain audit pipeline: select roots per policy, build the forest, validate every intermediate, and report the validated chain set per root"),
				mcp.WithString("config",
					mcp.Required(),
					mcp.Description("Path to the run configuration file (.json, .yaml, .yml)"),
				),
				mcp.WithString("dataset",
					mcp.Description("Override the configured dataset path"),
				),
				mcp.WithString("now",
					mcp.Description("Fixed RFC3339 evaluation instant (default: current time)"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'summary' or 'json' (default: summary)"),
					mcp.DefaultString("summary"),
				),
			),
			Handler: handleRunChainAudit,
		},
		{
			Tool: mcp.NewTool("render_forest",
				mcp.WithDescription("Render each selected root's walked trust tree as an ASCII diagram with per-node validation outcomes"),
				mcp.WithString("config",
					mcp.Required(),
					mcp.Description("Path to the run configuration file (.json, .yaml, .yml)"),
				),
				mcp.WithString("now",
					mcp.Description("Fixed RFC3339 evaluation instant (default: current time)"),
				),
			),
			Handler: handleRenderForest,
		},
		{
			Tool: mcp.NewTool("check_prefix_collisions",
				mcp.WithDescription("Derive the 26-character short identifier for each fingerprint and report any collisions between distinct fingerprints"),
				mcp.WithString("fingerprints",
					mcp.Required(),
					mcp.Description("Comma-separated SHA-256 fingerprints to check"),
				),
			),
			Handler: handleCheckPrefixCollisions,
		},
	}
}
