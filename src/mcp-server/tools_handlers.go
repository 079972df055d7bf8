// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	ccadbchain "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/chain"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/config"
	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
	"github.com/mark3labs/mcp-go/mcp"
)

// runPipeline loads the configured inputs and executes the audit.
// Shared by the audit and forest tools so both report identical
// semantics for identical inputs.
func runPipeline(configPath, datasetOverride, nowOverride string) (*ccadbchain.AuditReport, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if datasetOverride != "" {
		cfg.Dataset = datasetOverride
	}
	if nowOverride != "" {
		cfg.Now = nowOverride
	}

	policy, err := cfg.ChainPolicy()
	if err != nil {
		return nil, err
	}

	now, err := cfg.EvaluationTime(time.Now())
	if err != nil {
		return nil, err
	}

	recs, err := ccadbrecords.LoadCSVFile(cfg.Dataset)
	if err != nil {
		return nil, err
	}

	revList := ccadbchain.RevocationList{}
	if cfg.RevocationList != "" {
		revList, err = ccadbchain.LoadRevocationListFile(cfg.RevocationList)
		if err != nil {
			return nil, err
		}
	}

	return ccadbchain.Audit(recs, policy, cfg.ExclusionList(), revList, now, cfg.Workers)
}

// handleRunChainAudit runs the full audit pipeline and reports the
// validated chain set per root.
//
// A short identifier collision is reported as a tool error carrying the
// full collision table, since the emitted set must not reach the
// relying system in that state.
func handleRunChainAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configPath, err := request.RequireString("config")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("config parameter required: %v", err)), nil
	}

	dataset := request.GetString("dataset", "")
	now := request.GetString("now", "")
	format := request.GetString("format", "summary")

	report, err := runPipeline(configPath, dataset, now)
	if err != nil {
		var collision *ccadbchain.CollisionError
		if errors.As(err, &collision) {
			return mcp.NewToolResultError(ccadbchain.RenderCollisionTable(collision)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("audit failed: %v", err)), nil
	}

	if format == "json" {
		data, err := json.MarshalIndent(report.Results, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	var out strings.Builder
	out.WriteString(ccadbchain.RenderResultsTable(report.Forest, report.Results))
	if report.EmptyRootSet {
		out.WriteString("\nPolicy selected no roots.\n")
	}
	if len(report.Orphans) > 0 {
		out.WriteString(fmt.Sprintf("\nOrphans: %s\n", strings.Join(report.Orphans, ", ")))
	}
	if len(report.Detached) > 0 {
		out.WriteString(fmt.Sprintf("\nDetached: %s\n", strings.Join(report.Detached, ", ")))
	}
	for _, amb := range report.Ambiguities {
		out.WriteString(fmt.Sprintf("\nAmbiguous parent data: %s assigned to %s (also reachable from %s)\n",
			amb.Fingerprint, amb.OwnerRoot, amb.OtherRoot))
	}
	return mcp.NewToolResultText(out.String()), nil
}

// handleRenderForest renders each root's walked tree as an ASCII diagram.
func handleRenderForest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configPath, err := request.RequireString("config")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("config parameter required: %v", err)), nil
	}

	now := request.GetString("now", "")

	report, err := runPipeline(configPath, "", now)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit failed: %v", err)), nil
	}

	if len(report.Results) == 0 {
		return mcp.NewToolResultText("Policy selected no roots."), nil
	}

	var out strings.Builder
	for i, res := range report.Results {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(ccadbchain.RenderASCIITree(report.Forest, res))
	}
	return mcp.NewToolResultText(out.String()), nil
}

// handleCheckPrefixCollisions derives short identifiers for the given
// fingerprints and reports every colliding group.
func handleCheckPrefixCollisions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("fingerprints")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fingerprints parameter required: %v", err)), nil
	}

	var results []ccadbchain.ChainResult
	for _, part := range strings.Split(raw, ",") {
		fp := ccadbrecords.CanonicalFingerprint(part)
		if fp == "" {
			continue
		}
		// CheckCollisions works over emitted chain results; a bare
		// fingerprint list maps to single-root results with no
		// intermediates.
		results = append(results, ccadbchain.ChainResult{Root: fp})
	}

	if err := ccadbchain.CheckCollisions(results); err != nil {
		var collision *ccadbchain.CollisionError
		if errors.As(err, &collision) {
			return mcp.NewToolResultText(ccadbchain.RenderCollisionTable(collision)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("collision check failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("No short identifier collisions across %d fingerprints", len(results))), nil
}
