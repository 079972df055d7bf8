// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package fetch downloads certificate bodies for an emitted fingerprint
// set from a public CT-log mirror and archives them as PEM files. It
// supports [PEM], DER, and [PKCS7] mirror responses and bounds its
// concurrency with a fixed worker pool. This collaborator performs the
// only network I/O in the repository; the chain engine itself never
// leaves memory.
//
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package fetch
