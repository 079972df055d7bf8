// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// ExclusionList holds root fingerprints for which intermediate
// discovery is deliberately skipped. Listed roots produce an empty
// intermediate set by design, not by failure.
type ExclusionList map[string]struct{}

// NewExclusionList builds an exclusion lookup from raw fingerprint
// strings, canonicalizing each entry.
func NewExclusionList(fingerprints []string) ExclusionList {
	ex := make(ExclusionList, len(fingerprints))
	for _, fp := range fingerprints {
		fp = ccadbrecords.CanonicalFingerprint(fp)
		if fp != "" {
			ex[fp] = struct{}{}
		}
	}
	return ex
}

// Contains reports whether the canonical form of fp is excluded.
func (ex ExclusionList) Contains(fp string) bool {
	_, ok := ex[ccadbrecords.CanonicalFingerprint(fp)]
	return ok
}

// Ambiguity records an intermediate reachable from more than one
// selected root through inconsistent parent data. The node is assigned
// to the first root that reaches it in root-processing order and never
// duplicated into a second tree.
type Ambiguity struct {
	Fingerprint string
	// OwnerRoot is the root that reached the node first and owns it.
	OwnerRoot string
	// OtherRoot is a later root that also reached the node.
	OtherRoot string
}

// Forest is the trust graph built once per run: all records stored in a
// single indexed arena with adjacency lists computed from parent
// fingerprint back-references. Traversal works on arena offsets and a
// visited set, never on live parent/child pointers.
//
// A Forest is immutable after BuildForest returns.
type Forest struct {
	arena    []*ccadbrecords.CertificateRecord
	index    map[string]int // canonical fingerprint -> arena offset
	children map[int][]int  // arena offset -> child offsets, file order
	owner    map[int]int    // descendant offset -> owning root offset

	roots    []int         // selected roots in processing order
	excluded map[int]bool  // roots short-circuited by the exclusion list
	treeWalk map[int][]int // root offset -> owned descendants in BFS order

	orphans     []string
	detached    []string
	ambiguities []Ambiguity
}

// BuildForest links every record to its parent via the fingerprint
// back-reference and materializes one tree per selected root.
//
// The fingerprint index and the reverse (parent -> children) index are
// built in one pass over the full record set. Each selected root is
// then traversed breadth-first; a node reachable from more than one
// root belongs to the first root that reaches it, recorded as an
// ambiguity. A root listed more than once keeps its first tree: the
// duplicate entry is dropped from the processing order and every owned
// descendant is recorded as an ambiguity instead. Records whose parent
// fingerprint resolves to no loaded record are orphans, and records
// reachable from no root record at all (an orphan's subtree, a cyclic
// parent group) are detached: both are excluded from every tree and
// reported, never silently dropped. Roots on the exclusion list
// short-circuit to an empty tree.
//
// Ownership assignment is computed here, single-threaded, so the walk
// stage may process roots concurrently without ordering ambiguity.
func BuildForest(recs []*ccadbrecords.CertificateRecord, roots []*ccadbrecords.CertificateRecord, exclusions ExclusionList) *Forest {
	f := &Forest{
		arena:    recs,
		index:    make(map[string]int, len(recs)),
		children: make(map[int][]int),
		owner:    make(map[int]int),
		excluded: make(map[int]bool),
		treeWalk: make(map[int][]int),
	}

	for i, rec := range recs {
		f.index[rec.Fingerprint] = i
	}

	// Reverse index plus orphan detection in the same pass.
	orphaned := make(map[int]bool)
	for i, rec := range recs {
		if rec.ParentFingerprint == "" {
			continue
		}
		parent, ok := f.index[rec.ParentFingerprint]
		if !ok {
			f.orphans = append(f.orphans, rec.Fingerprint)
			orphaned[i] = true
			continue
		}
		f.children[parent] = append(f.children[parent], i)
	}

	f.findDetached(orphaned)

	for _, root := range roots {
		rootIdx, ok := f.index[root.Fingerprint]
		if !ok {
			continue
		}

		if _, claimed := f.treeWalk[rootIdx]; claimed {
			// Inconsistent selection data can list the same root twice.
			// The first pass owns the tree; the duplicate records an
			// ambiguity per owned descendant and is not emitted again.
			for _, node := range f.treeWalk[rootIdx] {
				f.ambiguities = append(f.ambiguities, Ambiguity{
					Fingerprint: f.arena[node].Fingerprint,
					OwnerRoot:   root.Fingerprint,
					OtherRoot:   root.Fingerprint,
				})
			}
			continue
		}

		f.roots = append(f.roots, rootIdx)

		if exclusions.Contains(root.Fingerprint) {
			f.excluded[rootIdx] = true
			f.treeWalk[rootIdx] = nil
			continue
		}

		f.treeWalk[rootIdx] = f.claimTree(rootIdx)
	}

	return f
}

// findDetached reports records no root record can reach through the
// parent references: descendants of orphans and members of cyclic
// parent groups. Direct orphans are reported separately; without this
// pass their subtrees would vanish from every output.
func (f *Forest) findDetached(orphaned map[int]bool) {
	reachable := make(map[int]struct{})
	var queue []int
	for i, rec := range f.arena {
		if rec.ParentFingerprint == "" {
			reachable[i] = struct{}{}
			queue = append(queue, f.children[i]...)
		}
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if _, seen := reachable[node]; seen {
			continue
		}
		reachable[node] = struct{}{}
		queue = append(queue, f.children[node]...)
	}

	for i, rec := range f.arena {
		if rec.ParentFingerprint == "" || orphaned[i] {
			continue
		}
		if _, ok := reachable[i]; !ok {
			f.detached = append(f.detached, rec.Fingerprint)
		}
	}
}

// claimTree walks the reverse index breadth-first from rootIdx and
// claims every unowned descendant for that root. The seen guard keeps a
// malformed cyclic parent reference from causing non-termination.
func (f *Forest) claimTree(rootIdx int) []int {
	var order []int
	seen := map[int]struct{}{rootIdx: {}}
	queue := append([]int(nil), f.children[rootIdx]...)

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if _, visited := seen[node]; visited {
			continue
		}
		seen[node] = struct{}{}

		if prior, owned := f.owner[node]; owned {
			if prior != rootIdx {
				f.ambiguities = append(f.ambiguities, Ambiguity{
					Fingerprint: f.arena[node].Fingerprint,
					OwnerRoot:   f.arena[prior].Fingerprint,
					OtherRoot:   f.arena[rootIdx].Fingerprint,
				})
			}
			continue
		}

		f.owner[node] = rootIdx
		order = append(order, node)
		queue = append(queue, f.children[node]...)
	}

	return order
}

// Roots returns the selected root fingerprints in processing order.
func (f *Forest) Roots() []string {
	out := make([]string, 0, len(f.roots))
	for _, idx := range f.roots {
		out = append(out, f.arena[idx].Fingerprint)
	}
	return out
}

// Record resolves a canonical fingerprint to its record. The second
// return value reports whether the fingerprint is in the arena.
func (f *Forest) Record(fp string) (*ccadbrecords.CertificateRecord, bool) {
	idx, ok := f.index[ccadbrecords.CanonicalFingerprint(fp)]
	if !ok {
		return nil, false
	}
	return f.arena[idx], true
}

// RootExcluded reports whether the given selected root was
// short-circuited by the exclusion list.
func (f *Forest) RootExcluded(fp string) bool {
	idx, ok := f.index[ccadbrecords.CanonicalFingerprint(fp)]
	if !ok {
		return false
	}
	return f.excluded[idx]
}

// Descendants returns the fingerprints owned by the given root in BFS
// order. Excluded roots and roots without intermediates return nil.
func (f *Forest) Descendants(rootFP string) []string {
	idx, ok := f.index[ccadbrecords.CanonicalFingerprint(rootFP)]
	if !ok {
		return nil
	}
	nodes := f.treeWalk[idx]
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, f.arena[n].Fingerprint)
	}
	return out
}

// Orphans returns the fingerprints of records whose declared parent
// resolves to no loaded record, in file order.
func (f *Forest) Orphans() []string { return f.orphans }

// Detached returns the fingerprints of records that no root record can
// reach through the parent references, in file order. Direct orphans
// are not repeated here.
func (f *Forest) Detached() []string { return f.detached }

// Ambiguities returns the multi-parent assignments resolved during
// construction, in discovery order.
func (f *Forest) Ambiguities() []Ambiguity { return f.ambiguities }
