// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

// ReadFingerprintList parses the two-column type,fingerprint CSV
// emitted by the audit pipeline and returns the canonical fingerprints
// in file order. The type column is informational here; roots and
// intermediates are archived alike.
func ReadFingerprintList(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out []string
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch: failed to read fingerprint list: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		// Skip the header row.
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "type") {
				continue
			}
		}
		fp := ccadbrecords.CanonicalFingerprint(row[len(row)-1])
		if fp != "" {
			out = append(out, fp)
		}
	}
	return out, nil
}

// ReadFingerprintListFile reads a fingerprint list from disk.
func ReadFingerprintListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to open fingerprint list: %w", err)
	}
	defer f.Close()
	return ReadFingerprintList(f)
}
