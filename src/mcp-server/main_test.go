// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-go/mcp"

	ccadbchain "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/chain"
)

const testDataset = `SHA-256 Fingerprint,Parent SHA-256 Fingerprint,Subject,Common Name,Valid From,Valid To,Revocation Status,Revocation List Status,Trust Bits,Mozilla Status,Microsoft Status,Chrome Status,Apple Status
AA00000000000000000000000000000000000000000000000000000000000000,,CN=Test Root,Test Root,2020.01.01,2035.01.01,,,Server Authentication,Included,,,
BB00000000000000000000000000000000000000000000000000000000000000,AA00000000000000000000000000000000000000000000000000000000000000,CN=Test Issuing,Test Issuing,2020.01.01,2035.01.01,,,Server Authentication,,,,
`

// writeTestInputs writes a dataset and a matching run configuration into
// a temp directory and returns the configuration path.
func writeTestInputs(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dataset := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(testDataset), 0644))

	content := "dataset: " + dataset + "\n" +
		"policy:\n" +
		"  sources: [mozilla]\n" +
		"  operation: union\n" +
		"now: \"2025-06-01T00:00:00Z\"\n"
	configPath := filepath.Join(dir, "audit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

// callTool invokes a handler directly with the given arguments.
func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// resultText concatenates the text content of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return text
}

func TestCreateTools(t *testing.T) {
	tools := createTools()
	require.Len(t, tools, 3)

	names := make([]string, 0, len(tools))
	for _, def := range tools {
		require.NotNil(t, def.Handler)
		names = append(names, def.Tool.Name)
	}
	assert.ElementsMatch(t, []string{"run_chain_audit", "render_forest", "check_prefix_collisions"}, names)
}

func TestHandleRunChainAudit(t *testing.T) {
	configPath := writeTestInputs(t)

	t.Run("summary format", func(t *testing.T) {
		result := callTool(t, handleRunChainAudit, "run_chain_audit", map[string]any{
			"config": configPath,
		})
		require.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "Test Root")
		assert.Contains(t, text, "walked")
	})

	t.Run("json format", func(t *testing.T) {
		result := callTool(t, handleRunChainAudit, "run_chain_audit", map[string]any{
			"config": configPath,
			"format": "json",
		})
		require.False(t, result.IsError)

		var results []ccadbchain.ChainResult
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "AA"+strings.Repeat("0", 62), results[0].Root)
		assert.Equal(t, []string{"BB" + strings.Repeat("0", 62)}, results[0].Intermediates)
	})

	t.Run("missing config parameter", func(t *testing.T) {
		result := callTool(t, handleRunChainAudit, "run_chain_audit", map[string]any{})
		assert.True(t, result.IsError)
	})

	t.Run("absent config file", func(t *testing.T) {
		result := callTool(t, handleRunChainAudit, "run_chain_audit", map[string]any{
			"config": filepath.Join(t.TempDir(), "nope.yaml"),
		})
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "audit failed")
	})

	t.Run("invalid now override", func(t *testing.T) {
		result := callTool(t, handleRunChainAudit, "run_chain_audit", map[string]any{
			"config": configPath,
			"now":    "yesterday",
		})
		assert.True(t, result.IsError)
	})
}

func TestHandleRenderForest(t *testing.T) {
	configPath := writeTestInputs(t)

	result := callTool(t, handleRenderForest, "render_forest", map[string]any{
		"config": configPath,
	})
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Test Root")
	assert.Contains(t, text, "└── [✓]")
}

func TestHandleCheckPrefixCollisions(t *testing.T) {
	t.Run("no collisions", func(t *testing.T) {
		result := callTool(t, handleCheckPrefixCollisions, "check_prefix_collisions", map[string]any{
			"fingerprints": "AA11,BB22",
		})
		require.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "No short identifier collisions across 2 fingerprints")
	})

	t.Run("colliding prefixes are reported", func(t *testing.T) {
		prefix := strings.Repeat("A", ccadbchain.ShortIDLength)
		a := prefix + strings.Repeat("1", 38)
		b := prefix + strings.Repeat("2", 38)

		result := callTool(t, handleCheckPrefixCollisions, "check_prefix_collisions", map[string]any{
			"fingerprints": a + "," + b,
		})
		require.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, a)
		assert.Contains(t, text, b)
	})

	t.Run("missing fingerprints parameter", func(t *testing.T) {
		result := callTool(t, handleCheckPrefixCollisions, "check_prefix_collisions", map[string]any{})
		assert.True(t, result.IsError)
	})
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer("1.3.3.7-testing"))
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}
