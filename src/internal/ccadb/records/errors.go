// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package ccadbrecords

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from the export header.
// It is fatal: the run cannot continue on an unparseable schema.
type SchemaError struct {
	// Missing lists the absent required column names in schema order.
	Missing []string
}

// Error names every missing column so operators can diagnose against
// the source dataset.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("ccadbrecords: export schema missing required columns: %s", strings.Join(e.Missing, ", "))
}

// DuplicateFingerprintError reports a fingerprint that appears more
// than once in the export. Fingerprints are the record identity, so a
// duplicate is fatal.
type DuplicateFingerprintError struct {
	// Fingerprint is the canonical fingerprint that was seen twice.
	Fingerprint string
	// Line is the 1-based data line of the second occurrence.
	Line int
}

func (e *DuplicateFingerprintError) Error() string {
	return fmt.Sprintf("ccadbrecords: duplicate fingerprint %s at line %d", e.Fingerprint, e.Line)
}
