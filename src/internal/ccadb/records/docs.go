// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package ccadbrecords loads the vendor-neutral [CCADB] export of root and
// intermediate CA records into typed in-memory records. Columns are
// addressed by header name, fingerprints are canonicalized to uppercase
// hex, and every optional column maps to an explicit nullable field so
// missing-value handling is enforced by the type system rather than by
// runtime checks scattered through validators.
//
// [CCADB]: https://www.ccadb.org/
package ccadbrecords
