// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"fmt"
	"strings"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// SetOperation combines per-vendor root subsets into the initial root
// set.
type SetOperation int

const (
	// OpUnion selects roots trusted by any listed vendor.
	OpUnion SetOperation = iota
	// OpIntersection selects roots trusted by all listed vendors.
	OpIntersection
)

// String returns the configuration name of the operation.
func (op SetOperation) String() string {
	if op == OpIntersection {
		return "intersection"
	}
	return "union"
}

// ParseSetOperation maps a configuration value to a SetOperation.
func ParseSetOperation(s string) (SetOperation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "union":
		return OpUnion, nil
	case "intersection":
		return OpIntersection, nil
	}
	return OpUnion, fmt.Errorf("ccadbchain: unknown set operation %q (want union or intersection)", s)
}

// Policy is the immutable trust-selection configuration consumed once
// by SelectRoots. It is never mutated after construction.
type Policy struct {
	// Sources lists the vendor programs whose inclusion decisions feed
	// the root selection. An empty list yields an empty root set; that
	// is a reportable outcome, not an error.
	Sources []ccadbrecords.Vendor

	// Operation combines the per-vendor subsets.
	Operation SetOperation

	// RequiredTrustBits optionally narrows the selection to roots
	// carrying every listed usage bit.
	RequiredTrustBits []ccadbrecords.TrustBit
}

// SelectRoots applies the policy to the full record set and returns the
// qualifying root-kind records in file order, which keeps downstream
// root-processing order deterministic.
//
// Only root-kind records participate; vendor inclusion on an
// intermediate never promotes it to a trust anchor.
func SelectRoots(recs []*ccadbrecords.CertificateRecord, policy Policy) []*ccadbrecords.CertificateRecord {
	if len(policy.Sources) == 0 {
		return nil
	}

	var out []*ccadbrecords.CertificateRecord
	for _, rec := range recs {
		if rec.Kind() != ccadbrecords.KindRoot {
			continue
		}
		if !qualifies(rec, policy) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// qualifies applies the vendor set algebra plus any required trust bits
// to a single root record.
func qualifies(rec *ccadbrecords.CertificateRecord, policy Policy) bool {
	matched := false
	for _, vendor := range policy.Sources {
		trusted := IsVendorTrustedRoot(rec, vendor)
		switch policy.Operation {
		case OpIntersection:
			if !trusted {
				return false
			}
			matched = true
		default: // OpUnion
			if trusted {
				matched = true
			}
		}
	}
	if !matched {
		return false
	}

	for _, bit := range policy.RequiredTrustBits {
		if !rec.HasTrustBit(bit) {
			return false
		}
	}
	return true
}
