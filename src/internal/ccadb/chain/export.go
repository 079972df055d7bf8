// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// WriteFingerprintCSV serializes the run's emitted fingerprint set in
// the two-column shape consumed by the archive-download collaborator:
// one row per certificate, type first ("root" or "intermediate"), then
// the canonical fingerprint. Rows follow root-processing order, each
// root immediately followed by its validated intermediates.
func WriteFingerprintCSV(w io.Writer, results []ChainResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"type", "fingerprint"}); err != nil {
		return fmt.Errorf("ccadbchain: failed to write fingerprint header: %w", err)
	}

	for _, res := range results {
		if err := writer.Write([]string{ccadbrecords.KindRoot.String(), res.Root}); err != nil {
			return fmt.Errorf("ccadbchain: failed to write root row: %w", err)
		}
		for _, fp := range res.Intermediates {
			if err := writer.Write([]string{ccadbrecords.KindIntermediate.String(), fp}); err != nil {
				return fmt.Errorf("ccadbchain: failed to write intermediate row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("ccadbchain: failed to flush fingerprint csv: %w", err)
	}
	return nil
}

// ForestNode is one node of the serialized forest: its fingerprint,
// short identifier, descriptive label, validation outcome, and child
// nodes in discovery order.
type ForestNode struct {
	Fingerprint string          `json:"fingerprint"`
	ShortID     string          `json:"shortId"`
	CommonName  string          `json:"commonName,omitempty"`
	Valid       bool            `json:"valid"`
	Reason      ExclusionReason `json:"reason,omitempty"`
	Children    []*ForestNode   `json:"children,omitempty"`
}

// ForestDocument is the serialized forest for offline inspection: one
// tree per selected root plus the run-level findings.
type ForestDocument struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Trees       []*ForestNode `json:"trees"`
	Orphans     []string      `json:"orphans,omitempty"`
	Detached    []string      `json:"detached,omitempty"`
	Ambiguities []Ambiguity   `json:"ambiguities,omitempty"`
}

// SerializeForest converts a walked forest into the nested structure
// consumed by reporting collaborators: root nodes carrying their child
// nodes, each child marked with its validation outcome from the run.
func SerializeForest(f *Forest, results []ChainResult, generatedAt time.Time) *ForestDocument {
	doc := &ForestDocument{
		GeneratedAt: generatedAt.UTC(),
		Trees:       make([]*ForestNode, 0, len(results)),
		Orphans:     f.Orphans(),
		Detached:    f.Detached(),
		Ambiguities: f.Ambiguities(),
	}

	for _, res := range results {
		outcome := make(map[string]ExclusionReason, len(res.Excluded))
		for _, ex := range res.Excluded {
			outcome[ex.Fingerprint] = ex.Reason
		}

		root := newForestNode(f, res.Root, true, "")
		nodes := map[string]*ForestNode{res.Root: root}

		// Descendants arrive in BFS order, so every parent node exists
		// before its children are attached.
		for _, fp := range f.Descendants(res.Root) {
			reason, excluded := outcome[fp]
			node := newForestNode(f, fp, !excluded, reason)
			nodes[fp] = node

			rec, ok := f.Record(fp)
			if !ok {
				continue
			}
			if parent, ok := nodes[rec.ParentFingerprint]; ok {
				parent.Children = append(parent.Children, node)
			}
		}

		doc.Trees = append(doc.Trees, root)
	}

	return doc
}

// WriteForestJSON serializes the forest document as indented JSON.
func WriteForestJSON(w io.Writer, doc *ForestDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("ccadbchain: failed to encode forest: %w", err)
	}
	return nil
}

func newForestNode(f *Forest, fp string, valid bool, reason ExclusionReason) *ForestNode {
	node := &ForestNode{
		Fingerprint: fp,
		ShortID:     ShortID(fp),
		Valid:       valid,
		Reason:      reason,
	}
	if rec, ok := f.Record(fp); ok {
		node.CommonName = rec.CommonName
	}
	return node
}
