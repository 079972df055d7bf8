// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the CCADB chain resolver.
// It implements a Cobra-based CLI with two subcommands: audit, which runs the
// trust-chain discovery and validation pipeline over a CCADB export, and fetch,
// which archives certificates for an emitted fingerprint set from a CT-log
// mirror. The package handles file I/O, context cancellation, and integrates
// with the logger package for output and error reporting.
package cli
