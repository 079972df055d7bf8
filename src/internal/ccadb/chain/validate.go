// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbchain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// RevocationList is an independent revocation feed consumed as a
// fingerprint lookup. It is the second revocation signal next to the
// record's own revoked flag; either signal suffices to exclude a record.
type RevocationList map[string]struct{}

// NewRevocationList builds a lookup from raw fingerprint strings,
// canonicalizing each entry.
func NewRevocationList(fingerprints []string) RevocationList {
	rl := make(RevocationList, len(fingerprints))
	for _, fp := range fingerprints {
		fp = ccadbrecords.CanonicalFingerprint(fp)
		if fp != "" {
			rl[fp] = struct{}{}
		}
	}
	return rl
}

// Contains reports whether the canonical form of fp is on the list.
func (rl RevocationList) Contains(fp string) bool {
	_, ok := rl[ccadbrecords.CanonicalFingerprint(fp)]
	return ok
}

// LoadRevocationList reads a revocation feed with one fingerprint per
// line. Blank lines and lines starting with '#' are skipped. Lines with
// multiple comma-separated fields use the first field, which tolerates
// CSV-shaped feeds without a schema contract.
func LoadRevocationList(r io.Reader) (RevocationList, error) {
	rl := make(RevocationList)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.IndexByte(line, ','); idx >= 0 {
			line = line[:idx]
		}
		fp := ccadbrecords.CanonicalFingerprint(line)
		if fp != "" {
			rl[fp] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ccadbchain: failed to read revocation list: %w", err)
	}
	return rl, nil
}

// LoadRevocationListFile reads a revocation feed from disk.
func LoadRevocationListFile(path string) (RevocationList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ccadbchain: failed to open revocation list: %w", err)
	}
	defer f.Close()
	return LoadRevocationList(f)
}

// ExclusionReason explains why a record failed validation during the
// chain walk. Reasons accumulate in per-root summaries; they never
// abort the run.
type ExclusionReason string

const (
	// ReasonRevoked covers both revocation signals: the record's own
	// revoked flag and membership in the supplied revocation list.
	ReasonRevoked ExclusionReason = "revoked"
	// ReasonExpired covers records outside their validity window,
	// including records with a missing ValidTo (fails closed).
	ReasonExpired ExclusionReason = "expired"
	// ReasonMissingTrustBit marks intermediates without the server
	// authentication usage bit.
	ReasonMissingTrustBit ExclusionReason = "missing server authentication trust bit"
)

// IsRevoked reports whether either revocation signal marks the record
// revoked: the primary revoked flag, the export's revocation-feed
// column, or membership in the supplied revocation list.
func IsRevoked(rec *ccadbrecords.CertificateRecord, rl RevocationList) bool {
	return rec.Revoked || rec.InRevocationList || rl.Contains(rec.Fingerprint)
}

// IsTimeValid reports whether now falls inside the record's validity
// window. A missing ValidFrom is treated as valid from the epoch; a
// missing ValidTo is treated as not valid. Failing closed on an absent
// expiry keeps an unbounded record out of every chain result.
func IsTimeValid(rec *ccadbrecords.CertificateRecord, now time.Time) bool {
	if rec.ValidTo == nil {
		return false
	}
	if now.After(rec.ValidTo.UTC()) {
		return false
	}
	if rec.ValidFrom != nil && now.Before(rec.ValidFrom.UTC()) {
		return false
	}
	return true
}

// IsVendorTrustedRoot reports whether the given root program currently
// includes the record.
func IsVendorTrustedRoot(rec *ccadbrecords.CertificateRecord, vendor ccadbrecords.Vendor) bool {
	return rec.TrustedBy(vendor)
}

// Evaluate applies the full validation predicate to a record at the
// injected instant. It returns true when the record passes, or false
// with the first failing reason in a fixed order (revocation, expiry,
// trust bits) so repeated runs report identically.
//
// The predicate is pure: "now" is always injected, never read from the
// system clock, to keep validation deterministic and testable.
func Evaluate(rec *ccadbrecords.CertificateRecord, now time.Time, rl RevocationList) (bool, ExclusionReason) {
	if IsRevoked(rec, rl) {
		return false, ReasonRevoked
	}
	if !IsTimeValid(rec, now) {
		return false, ReasonExpired
	}
	if rec.Kind() == ccadbrecords.KindIntermediate && !rec.HasTrustBit(ccadbrecords.TrustBitServerAuth) {
		return false, ReasonMissingTrustBit
	}
	return true, ""
}

// Passes reports whether the record passes validation for
// chain-building purposes: not revoked, time-valid, and (for
// intermediates) carrying the server authentication trust bit.
func Passes(rec *ccadbrecords.CertificateRecord, now time.Time, rl RevocationList) bool {
	ok, _ := Evaluate(rec, now, rl)
	return ok
}
