// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbrecords

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/helper/gc"
)

// Column names of the versioned CCADB export schema. The loader
// addresses columns by header name, so column order in the file does
// not matter.
const (
	ColFingerprint       = "SHA-256 Fingerprint"
	ColParentFingerprint = "Parent SHA-256 Fingerprint"
	ColSubject           = "Subject"
	ColCommonName        = "Common Name"
	ColValidFrom         = "Valid From"
	ColValidTo           = "Valid To"
	ColRevocationStatus  = "Revocation Status"
	ColRevocationList    = "Revocation List Status"
	ColTrustBits         = "Trust Bits"
	ColMozillaStatus     = "Mozilla Status"
	ColMicrosoftStatus   = "Microsoft Status"
	ColChromeStatus      = "Chrome Status"
	ColAppleStatus       = "Apple Status"
)

// requiredColumns must be present in the header for the export to be
// loadable at all. Every other column is optional and absent values
// load as "unknown", which validators interpret conservatively.
var requiredColumns = []string{ColFingerprint, ColParentFingerprint}

// timeLayouts are the timestamp formats accepted in the validity
// columns. The export uses dotted dates; ISO forms appear in older
// snapshots.
var timeLayouts = []string{"2006.01.02", "2006-01-02", time.RFC3339}

// vendorColumns maps each root program to its inclusion-status column.
var vendorColumns = map[Vendor]string{
	VendorMozilla:   ColMozillaStatus,
	VendorMicrosoft: ColMicrosoftStatus,
	VendorChrome:    ColChromeStatus,
	VendorApple:     ColAppleStatus,
}

// LoadCSV parses a CCADB export into typed certificate records.
//
// Records are produced in file order. The fingerprint and parent
// fingerprint are canonicalized to uppercase hex. Parsing fails with a
// [*SchemaError] when required columns are absent and with a
// [*DuplicateFingerprintError] naming the offending fingerprint when a
// fingerprint appears twice.
//
// Parameters:
//   - r: Byte stream of the tabular export
//
// Returns:
//   - []*CertificateRecord: Records in file order
//   - error: Schema, duplicate, or CSV-level parse error
func LoadCSV(r io.Reader) ([]*CertificateRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows are validated against the header below

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &SchemaError{Missing: requiredColumns}
		}
		return nil, fmt.Errorf("ccadbrecords: failed to read export header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var (
		out  []*CertificateRecord
		seen = make(map[string]struct{})
		line = 1 // header consumed
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ccadbrecords: failed to read export row: %w", err)
		}
		line++

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		fingerprint := CanonicalFingerprint(field(ColFingerprint))
		if fingerprint == "" {
			// Blank identifier rows carry no record.
			continue
		}
		if _, dup := seen[fingerprint]; dup {
			return nil, &DuplicateFingerprintError{Fingerprint: fingerprint, Line: line}
		}
		seen[fingerprint] = struct{}{}

		rec := &CertificateRecord{
			Fingerprint:       fingerprint,
			ParentFingerprint: CanonicalFingerprint(field(ColParentFingerprint)),
			SubjectName:       field(ColSubject),
			CommonName:        field(ColCommonName),
			ValidFrom:         parseTime(field(ColValidFrom)),
			ValidTo:           parseTime(field(ColValidTo)),
			Revoked:           parseRevoked(field(ColRevocationStatus)),
			InRevocationList:  parseRevocationList(field(ColRevocationList)),
			TrustBits:         parseTrustBits(field(ColTrustBits)),
			VendorInclusion:   make(map[Vendor]bool, len(Vendors)),
		}

		for vendor, col := range vendorColumns {
			rec.VendorInclusion[vendor] = parseInclusion(field(col))
		}

		out = append(out, rec)
	}

	return out, nil
}

// LoadCSVFile reads and parses a CCADB export from disk using the
// shared buffer pool.
func LoadCSVFile(path string) ([]*CertificateRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ccadbrecords: failed to open export: %w", err)
	}
	defer f.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("ccadbrecords: failed to read export: %w", err)
	}

	return LoadCSV(bytes.NewReader(buf.Bytes()))
}

// parseTime interprets a validity column value. Empty or unparseable
// values load as nil; the validator treats a nil ValidTo as expired.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseRevoked maps the primary revocation column to the revoked flag.
// The column carries values like "Revoked", "Parent Cert Revoked", and
// "Not Revoked".
func parseRevoked(s string) bool {
	return strings.EqualFold(s, "Revoked") || strings.EqualFold(s, "Parent Cert Revoked")
}

// parseRevocationList maps the revocation-feed column to a membership
// flag. Only a definitive "Added" state counts as revoked.
func parseRevocationList(s string) bool {
	return strings.EqualFold(s, "Added") || strings.EqualFold(s, "Added to CRL")
}

// parseInclusion maps a vendor status column to an inclusion flag.
func parseInclusion(s string) bool {
	return strings.EqualFold(s, "Included")
}

// parseTrustBits splits the semicolon-separated trust bit column.
func parseTrustBits(s string) map[TrustBit]struct{} {
	bits := make(map[TrustBit]struct{})
	if s == "" {
		return bits
	}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bits[TrustBit(part)] = struct{}{}
	}
	return bits
}
