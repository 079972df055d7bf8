// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"time"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// AuditReport is the outcome of one full pipeline run: per-root chain
// results plus the run-level findings that are reported but never
// abort the run.
type AuditReport struct {
	// Results holds one ChainResult per selected root in processing
	// order.
	Results []ChainResult
	// Forest is the trust graph the results were walked from, kept for
	// serialization and inspection.
	Forest *Forest
	// Orphans lists records whose declared parent resolves to no
	// loaded record.
	Orphans []string
	// Detached lists records unreachable from every root record
	// through the parent references (orphan subtrees, cyclic parent
	// groups), excluding the direct orphans above.
	Detached []string
	// Ambiguities lists multi-parent assignments resolved during
	// forest construction.
	Ambiguities []Ambiguity
	// EmptyRootSet marks a run whose policy selected no roots, a
	// reportable non-fatal outcome of an overly narrow policy.
	EmptyRootSet bool
}

// ValidatedCount returns the total number of validated intermediates
// across every root.
func (r *AuditReport) ValidatedCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Intermediates)
	}
	return n
}

// ExcludedCount returns the total number of intermediates dropped by
// validation across every root.
func (r *AuditReport) ExcludedCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Excluded)
	}
	return n
}

// Audit runs the whole engine pipeline over an in-memory record set:
// select roots per policy, build the forest, walk and validate every
// tree, then gate the output on the short identifier collision check.
//
// Individual validation failures accumulate into the report; only the
// collision check is fatal here, returned as a [*CollisionError]
// alongside the report that produced it so callers can still surface
// the findings. For fixed inputs the report is deterministic, including
// with workers > 1.
func Audit(recs []*ccadbrecords.CertificateRecord, policy Policy, exclusions ExclusionList, rl RevocationList, now time.Time, workers int) (*AuditReport, error) {
	roots := SelectRoots(recs, policy)
	forest := BuildForest(recs, roots, exclusions)

	report := &AuditReport{
		Results:      WalkConcurrent(forest, now, rl, workers),
		Forest:       forest,
		Orphans:      forest.Orphans(),
		Detached:     forest.Detached(),
		Ambiguities:  forest.Ambiguities(),
		EmptyRootSet: len(roots) == 0,
	}

	if err := CheckCollisions(report.Results); err != nil {
		return report, err
	}
	return report, nil
}
