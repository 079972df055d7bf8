// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the CCADB chain audit pipeline over the
// [MCP] stdio transport. It registers three tools: run_chain_audit for
// the full pipeline, render_forest for per-root ASCII diagrams, and
// check_prefix_collisions for validating a short identifier namespace.
// The server supports graceful shutdown on SIGINT and SIGTERM.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
