// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"sync"
	"time"
)

// ExcludedRecord names an intermediate that failed validation during
// the walk, with the reason it was excluded.
type ExcludedRecord struct {
	Fingerprint string          `json:"fingerprint"`
	Reason      ExclusionReason `json:"reason"`
}

// ChainResult is the output unit for one selected root: the ordered set
// of validated intermediates reachable from it plus the validation
// failures encountered on the way.
//
// A root with zero intermediates is a valid outcome, surfaced as a
// ChainResult with an empty set, never as an error.
type ChainResult struct {
	// Root is the root's canonical fingerprint.
	Root string `json:"root"`
	// Intermediates lists validated intermediate fingerprints in
	// breadth-first order from the root.
	Intermediates []string `json:"intermediates"`
	// Excluded lists intermediates that failed validation, in visit
	// order.
	Excluded []ExcludedRecord `json:"excluded,omitempty"`
	// RootExcluded marks a root whose discovery was short-circuited by
	// the exclusion list.
	RootExcluded bool `json:"rootExcluded,omitempty"`
}

// ExcludedCount returns the number of intermediates dropped by
// validation for this root.
func (r ChainResult) ExcludedCount() int { return len(r.Excluded) }

// Walk traverses each root's tree breadth-first and applies the
// validator at every intermediate node, producing one ChainResult per
// selected root in root-processing order.
//
// Every descendant is visited exactly once, guarded by a visited set
// keyed on fingerprint, so even a residual cyclic parent reference
// terminates. An intermediate that fails validation is excluded from
// the result but its children remain reachable and are still
// evaluated: each node is validated independently, mirroring the
// policy that relying parties re-validate on their own.
//
// The injected now keeps expiry evaluation deterministic; Walk never
// reads the system clock.
func Walk(f *Forest, now time.Time, rl RevocationList) []ChainResult {
	results := make([]ChainResult, len(f.roots))
	for i, rootIdx := range f.roots {
		results[i] = f.walkRoot(rootIdx, now, rl)
	}
	return results
}

// WalkConcurrent runs the per-root validation walks on a fixed worker
// pool. Trees are data-disjoint after BuildForest resolves ownership
// single-threaded, and results are emitted in root-processing order, so
// the output is byte-identical to [Walk] for the same inputs.
func WalkConcurrent(f *Forest, now time.Time, rl RevocationList, workers int) []ChainResult {
	if workers <= 1 || len(f.roots) <= 1 {
		return Walk(f, now, rl)
	}
	if workers > len(f.roots) {
		workers = len(f.roots)
	}

	results := make([]ChainResult, len(f.roots))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = f.walkRoot(f.roots[i], now, rl)
			}
		}()
	}

	for i := range f.roots {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// walkRoot validates one root's tree. The traversal follows the
// adjacency lists restricted to nodes owned by this root, so an
// ambiguous node claimed by an earlier root is never visited twice
// across the run.
func (f *Forest) walkRoot(rootIdx int, now time.Time, rl RevocationList) ChainResult {
	result := ChainResult{
		Root:          f.arena[rootIdx].Fingerprint,
		Intermediates: []string{},
	}

	if f.excluded[rootIdx] {
		result.RootExcluded = true
		return result
	}

	visited := map[string]struct{}{result.Root: {}}
	queue := append([]int(nil), f.children[rootIdx]...)

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		rec := f.arena[node]
		if _, seen := visited[rec.Fingerprint]; seen {
			continue
		}
		visited[rec.Fingerprint] = struct{}{}

		if owner, ok := f.owner[node]; !ok || owner != rootIdx {
			continue
		}

		if ok, reason := Evaluate(rec, now, rl); ok {
			result.Intermediates = append(result.Intermediates, rec.Fingerprint)
		} else {
			result.Excluded = append(result.Excluded, ExcludedRecord{
				Fingerprint: rec.Fingerprint,
				Reason:      reason,
			})
		}

		// Children stay reachable even below an invalid node.
		queue = append(queue, f.children[node]...)
	}

	return result
}
