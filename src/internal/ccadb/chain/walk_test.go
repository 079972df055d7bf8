// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccadbchain "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/chain"
	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

func TestWalk(t *testing.T) {
	t.Run("valid and excluded intermediates partition the tree", func(t *testing.T) {
		recs := []*ccadbrecords.CertificateRecord{
			newRecord("r1", withVendors(ccadbrecords.VendorMozilla)),
			newRecord("i1", withParent("r1")),
			newRecord("i2", withParent("r1"), withValidity(testNow.AddDate(-10, 0, 0), testNow.AddDate(-1, 0, 0))),
		}

		f := ccadbchain.BuildForest(recs, rootsOf(recs), ccadbchain.ExclusionList{})
		results := ccadbchain.Walk(f, testNow, ccadbchain.RevocationList{})

		require.Len(t, results, 1)
		res := results[0]
		assert.Equal(t, fp("r1"), res.Root)
		assert.Equal(t, []string{fp("i1")}, res.Intermediates)
		require.Len(t, res.Excluded, 1)
		assert.Equal(t, fp("i2"), res.Excluded[0].Fingerprint)
		assert.Equal(t, ccadbchain.ReasonExpired, res.Excluded[0].Reason)
		assert.False(t, res.RootExcluded)
		assert.Equal(t, 1, res.ExcludedCount())
	})

	t.Run("children below an invalid node are still evaluated", func(t *testing.T) {
		recs := []*ccadbrecords.CertificateRecord{
			newRecord("r1"),
			newRecord("i1", withParent("r1"), withRevoked()),
			newRecord("i2", withParent("i1")),
			newRecord("i3", withParent("i2"), withTrustBits(ccadbrecords.TrustBitSecureEmail)),
		}

		f := ccadbchain.BuildForest(recs, rootsOf(recs), ccadbchain.ExclusionList{})
		results := ccadbchain.Walk(f, testNow, ccadbchain.RevocationList{})

		require.Len(t, results, 1)
		res := results[0]
		// i2 is valid on its own even though its issuer i1 is revoked.
		assert.Equal(t, []string{fp("i2")}, res.Intermediates)
		require.Len(t, res.Excluded, 2)
		assert.Equal(t, fp("i1"), res.Excluded[0].Fingerprint)
		assert.Equal(t, ccadbchain.ReasonRevoked, res.Excluded[0].Reason)
		assert.Equal(t, fp("i3"), res.Excluded[1].Fingerprint)
		assert.Equal(t, ccadbchain.ReasonMissingTrustBit, res.Excluded[1].Reason)
	})

	t.Run("root with no intermediates yields an empty result", func(t *testing.T) {
		recs := []*ccadbrecords.CertificateRecord{newRecord("r1")}

		f := ccadbchain.BuildForest(recs, rootsOf(recs), ccadbchain.ExclusionList{})
		results := ccadbchain.Walk(f, testNow, ccadbchain.RevocationList{})

		require.Len(t, results, 1)
		assert.Equal(t, []string{}, results[0].Intermediates)
		assert.Empty(t, results[0].Excluded)
	})

	t.Run("excluded root short-circuits without visiting descendants", func(t *testing.T) {
		recs := []*ccadbrecords.CertificateRecord{
			newRecord("r1"),
			newRecord("i1", withParent("r1"), withRevoked()),
		}

		exclusions := ccadbchain.NewExclusionList([]string{fp("r1")})
		f := ccadbchain.BuildForest(recs, rootsOf(recs), exclusions)
		results := ccadbchain.Walk(f, testNow, ccadbchain.RevocationList{})

		require.Len(t, results, 1)
		assert.True(t, results[0].RootExcluded)
		assert.Empty(t, results[0].Intermediates)
		assert.Empty(t, results[0].Excluded)
	})

	t.Run("run-time revocation list excludes during the walk", func(t *testing.T) {
		recs := []*ccadbrecords.CertificateRecord{
			newRecord("r1"),
			newRecord("i1", withParent("r1")),
		}

		rl := ccadbchain.NewRevocationList([]string{fp("i1")})
		f := ccadbchain.BuildForest(recs, rootsOf(recs), ccadbchain.ExclusionList{})
		results := ccadbchain.Walk(f, testNow, rl)

		require.Len(t, results, 1)
		require.Len(t, results[0].Excluded, 1)
		assert.Equal(t, ccadbchain.ReasonRevoked, results[0].Excluded[0].Reason)
	})
}

// forestFixture builds a wide forest for the determinism tests: many
// roots, each with a mix of valid and failing descendants.
func forestFixture(tb testing.TB) (*ccadbchain.Forest, ccadbchain.RevocationList) {
	tb.Helper()

	tags := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var recs []*ccadbrecords.CertificateRecord
	for _, tag := range tags {
		recs = append(recs,
			newRecord("r"+tag),
			newRecord("i"+tag+"1", withParent("r"+tag)),
			newRecord("i"+tag+"2", withParent("r"+tag), withRevoked()),
			newRecord("i"+tag+"3", withParent("i"+tag+"1")),
			newRecord("i"+tag+"4", withParent("i"+tag+"2"), withNoExpiry()),
		)
	}

	rl := ccadbchain.NewRevocationList([]string{fp("ia3")})
	return ccadbchain.BuildForest(recs, rootsOf(recs), ccadbchain.ExclusionList{}), rl
}

func TestWalkDeterminism(t *testing.T) {
	f, rl := forestFixture(t)

	baseline := ccadbchain.Walk(f, testNow, rl)
	for range 5 {
		assert.Equal(t, baseline, ccadbchain.Walk(f, testNow, rl))
	}
}

func TestWalkConcurrentMatchesSequential(t *testing.T) {
	f, rl := forestFixture(t)
	baseline := ccadbchain.Walk(f, testNow, rl)

	for _, workers := range []int{0, 1, 2, 4, 16, 64} {
		results := ccadbchain.WalkConcurrent(f, testNow, rl, workers)
		assert.Equal(t, baseline, results, "workers=%d", workers)
	}
}
