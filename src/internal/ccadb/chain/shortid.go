// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"fmt"
	"sort"
	"strings"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// ShortIDLength is the short identifier width imposed by the downstream
// system that consumes the emitted fingerprints: object names there are
// capped at 26 characters.
const ShortIDLength = 26

// ShortID derives the short identifier for a fingerprint: a fixed
// prefix of the canonicalized uppercase hex digest. Short identifiers
// must be collision-checked across the full run before they are handed
// downstream; see [CheckCollisions].
func ShortID(fingerprint string) string {
	fp := ccadbrecords.CanonicalFingerprint(fingerprint)
	if len(fp) <= ShortIDLength {
		return fp
	}
	return fp[:ShortIDLength]
}

// CollisionError reports distinct fingerprints that share a short
// identifier. A collision downstream would silently conflate two
// certificates in the relying system, so this is a correctness gate:
// the run aborts and every colliding group is named.
type CollisionError struct {
	// Collisions maps each colliding short identifier to the distinct
	// fingerprints that produce it, sorted for stable output.
	Collisions map[string][]string
}

func (e *CollisionError) Error() string {
	ids := make([]string, 0, len(e.Collisions))
	for id := range e.Collisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "ccadbchain: %d short identifier collision(s):", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, " %s => [%s]", id, strings.Join(e.Collisions[id], ", "))
	}
	return b.String()
}

// CheckCollisions derives the short identifier for every fingerprint
// emitted by the run (roots and validated intermediates alike) and
// fails with a [*CollisionError] naming every colliding pair if two
// distinct fingerprints share a prefix. It returns nil when the short
// identifier namespace is injective over the emitted set.
func CheckCollisions(results []ChainResult) error {
	byShortID := make(map[string]map[string]struct{})

	add := func(fp string) {
		id := ShortID(fp)
		group, ok := byShortID[id]
		if !ok {
			group = make(map[string]struct{})
			byShortID[id] = group
		}
		group[fp] = struct{}{}
	}

	for _, res := range results {
		add(res.Root)
		for _, fp := range res.Intermediates {
			add(fp)
		}
	}

	collisions := make(map[string][]string)
	for id, group := range byShortID {
		if len(group) < 2 {
			continue
		}
		fps := make([]string, 0, len(group))
		for fp := range group {
			fps = append(fps, fp)
		}
		sort.Strings(fps)
		collisions[id] = fps
	}

	if len(collisions) > 0 {
		return &CollisionError{Collisions: collisions}
	}
	return nil
}
