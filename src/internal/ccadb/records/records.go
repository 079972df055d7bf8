// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbrecords

import (
	"strings"
	"time"
)

// Vendor identifies a root program that publishes inclusion decisions
// in the CCADB export.
type Vendor string

// The four root programs tracked by the CCADB export.
const (
	VendorMozilla   Vendor = "mozilla"
	VendorMicrosoft Vendor = "microsoft"
	VendorChrome    Vendor = "chrome"
	VendorApple     Vendor = "apple"
)

// Vendors lists all known root programs in a fixed order.
var Vendors = []Vendor{VendorMozilla, VendorMicrosoft, VendorChrome, VendorApple}

// ParseVendor maps a vendor name to a known Vendor. The second return
// value reports whether the name is one of the four tracked programs.
func ParseVendor(name string) (Vendor, bool) {
	switch Vendor(strings.ToLower(strings.TrimSpace(name))) {
	case VendorMozilla:
		return VendorMozilla, true
	case VendorMicrosoft:
		return VendorMicrosoft, true
	case VendorChrome:
		return VendorChrome, true
	case VendorApple:
		return VendorApple, true
	}
	return "", false
}

// TrustBit is a usage-purpose flag carried by a certificate record.
type TrustBit string

// Trust bits that appear in the CCADB export. TrustBitServerAuth is the
// bit required for an intermediate to participate in TLS chain building.
const (
	TrustBitServerAuth  TrustBit = "Server Authentication"
	TrustBitClientAuth  TrustBit = "Client Authentication"
	TrustBitSecureEmail TrustBit = "Secure Email"
	TrustBitCodeSigning TrustBit = "Code Signing"
	TrustBitTimeStamp   TrustBit = "Time Stamping"
)

// RecordKind classifies a certificate record by its position in the
// trust graph.
type RecordKind int

const (
	// KindRoot is a record without a parent fingerprint reference.
	KindRoot RecordKind = iota
	// KindIntermediate is a record issued by another record.
	KindIntermediate
)

// String returns the lowercase name used in serialized output.
func (k RecordKind) String() string {
	if k == KindRoot {
		return "root"
	}
	return "intermediate"
}

// CertificateRecord is one row of the CCADB export, populated at load
// time with every optional column mapped to an explicit nullable field.
//
// Fingerprints are canonicalized to uppercase hex at load time; all
// lookups key on the canonical form.
type CertificateRecord struct {
	// Fingerprint is the canonical SHA-256 fingerprint, unique across
	// the loaded record set.
	Fingerprint string

	// ParentFingerprint references the issuing certificate. Empty for
	// root records.
	ParentFingerprint string

	SubjectName string
	CommonName  string

	// ValidFrom and ValidTo are UTC instants. A nil value means the
	// column was absent or unparseable; validators interpret that
	// conservatively (see [IsTimeValid] in the chain package).
	ValidFrom *time.Time
	ValidTo   *time.Time

	// Revoked is the primary revocation signal from the export.
	Revoked bool
	// InRevocationList reports membership in the export's own
	// revocation feed column. The run-time revocation list supplied to
	// the validator is an independent third signal.
	InRevocationList bool

	// TrustBits holds the usage purposes approved for this record.
	TrustBits map[TrustBit]struct{}

	// VendorInclusion records, per root program, whether the program
	// currently trusts this record as a root.
	VendorInclusion map[Vendor]bool
}

// Kind derives the record's role from its parent reference.
func (r *CertificateRecord) Kind() RecordKind {
	if r.ParentFingerprint == "" {
		return KindRoot
	}
	return KindIntermediate
}

// HasTrustBit reports whether the record carries the given usage bit.
func (r *CertificateRecord) HasTrustBit(bit TrustBit) bool {
	_, ok := r.TrustBits[bit]
	return ok
}

// TrustedBy reports whether the given root program currently includes
// this record. Unknown vendors and absent columns report false.
func (r *CertificateRecord) TrustedBy(vendor Vendor) bool {
	return r.VendorInclusion[vendor]
}

// CanonicalFingerprint normalizes a fingerprint string to the canonical
// form used as the record identifier: uppercase hex with separators and
// surrounding whitespace removed.
func CanonicalFingerprint(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, ": ") {
		s = strings.Map(func(c rune) rune {
			if c == ':' || c == ' ' {
				return -1
			}
			return c
		}, s)
	}
	return strings.ToUpper(s)
}
