// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// ccadb-chain-resolver is a command-line tool for discovering and validating
// trust chains in a CCADB export of root and intermediate CA records.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/ccadb-chain-resolver/cmd/ccadb-chain-resolver@latest
//
// # Usage
//
//	ccadb-chain-resolver audit -c CONFIG_FILE [FLAGS]
//	ccadb-chain-resolver fetch FINGERPRINT_CSV [FLAGS]
//
// # Audit flags
//
//	-c, --config   Run configuration file (.json, .yaml, .yml) [required]
//	    --dataset  Override the configured dataset path
//	    --now      Fixed RFC3339 evaluation instant (default: current time)
//	-t, --tree     Print an ASCII tree per root
//
// # Fetch flags
//
//	-o, --out      Output directory for archived PEM files (default: certs)
//	    --mirror   Mirror URL template with a %s fingerprint verb
//	    --workers  Download worker-pool size (default: 4)
//
// # Examples
//
// Audit an export with a union policy over mozilla and chrome:
//
//	ccadb-chain-resolver audit -c policy.yaml --tree
//
// Pin the evaluation instant for a reproducible run:
//
//	ccadb-chain-resolver audit -c policy.yaml --now 2026-01-01T00:00:00Z
//
// Archive the certificates named by a previous audit:
//
//	ccadb-chain-resolver fetch fingerprints.csv -o certs/
package main
