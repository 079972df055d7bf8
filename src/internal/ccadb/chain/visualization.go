// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderResultsTable renders the per-root audit results as a formatted
// markdown table: one row per selected root with its common name, the
// number of validated and excluded intermediates, and its state.
//
// Parameters:
//   - f: Forest the results were walked from (resolves common names)
//   - results: Chain results in root-processing order
//
// Returns:
//   - string: Markdown table representation of the audit results
func RenderResultsTable(f *Forest, results []ChainResult) string {
	if len(results) == 0 {
		return "No roots selected by policy"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Root", "Common Name", "Valid", "Excluded", "State"})

	var rows [][]string
	for i, res := range results {
		commonName := ""
		if rec, ok := f.Record(res.Root); ok {
			commonName = rec.CommonName
		}

		state := "walked"
		if res.RootExcluded {
			state = "exclusion list"
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ShortID(res.Root),
			commonName,
			fmt.Sprintf("%d", len(res.Intermediates)),
			fmt.Sprintf("%d", len(res.Excluded)),
			state,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// RenderCollisionTable renders a short identifier collision report as a
// markdown table, one row per colliding fingerprint grouped under its
// short identifier.
func RenderCollisionTable(err *CollisionError) string {
	if err == nil || len(err.Collisions) == 0 {
		return "No short identifier collisions"
	}

	ids := make([]string, 0, len(err.Collisions))
	for id := range err.Collisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"Short ID", "Fingerprint"})

	var rows [][]string
	for _, id := range ids {
		for _, fp := range err.Collisions[id] {
			rows = append(rows, []string{id, fp})
		}
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// RenderASCIITree renders one root's walked tree as an ASCII diagram
// with a validity marker per intermediate.
//
// Intermediates appear in breadth-first order under their root; a node
// excluded by validation is marked with its reason.
func RenderASCIITree(f *Forest, res ChainResult) string {
	var result strings.Builder

	rootLabel := res.Root
	if rec, ok := f.Record(res.Root); ok && rec.CommonName != "" {
		rootLabel = fmt.Sprintf("%s (%s)", rec.CommonName, ShortID(res.Root))
	}
	result.WriteString(rootLabel + "\n")

	if res.RootExcluded {
		result.WriteString("└── (discovery skipped: root on exclusion list)\n")
		return result.String()
	}

	reasons := make(map[string]ExclusionReason, len(res.Excluded))
	for _, ex := range res.Excluded {
		reasons[ex.Fingerprint] = ex.Reason
	}

	nodes := f.Descendants(res.Root)
	for i, fp := range nodes {
		connector := "├── "
		if i == len(nodes)-1 {
			connector = "└── "
		}

		marker := "✓"
		suffix := ""
		if reason, excluded := reasons[fp]; excluded {
			marker = "✗"
			suffix = fmt.Sprintf(" (%s)", reason)
		}

		label := ShortID(fp)
		if rec, ok := f.Record(fp); ok && rec.CommonName != "" {
			label = fmt.Sprintf("%s %s", label, rec.CommonName)
		}

		result.WriteString(fmt.Sprintf("%s[%s] %s%s\n", connector, marker, label, suffix))
	}

	return result.String()
}
