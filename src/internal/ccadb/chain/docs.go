// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package ccadbchain implements trust-chain discovery and validation over
// a loaded [CCADB] record set. It provides capabilities to:
//   - Validate records against revocation, expiry, and usage-purpose constraints.
//   - Select trusted roots by applying a declarative vendor policy.
//   - Link intermediates to their issuing roots from fingerprint metadata,
//     producing a forest with orphan and ambiguity reporting.
//   - Walk each tree to emit the validated intermediate set per root,
//     gated by a short identifier collision check.
//
// The engine is pure and deterministic: all inputs, including the
// evaluation instant, are injected, and no network or clock access
// happens inside the pipeline. Cryptographic signature verification is
// out of scope; the engine trusts the dataset's stated parent
// relationships and trust bits.
//
// [CCADB]: https://www.ccadb.org/
package ccadbchain
