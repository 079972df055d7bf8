// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads audit run configuration from JSON or YAML files.
// JSON documents are validated against an embedded schema before
// unmarshaling; YAML documents rely on struct-level validation during
// policy conversion. The exclusion list and evaluation instant are part
// of the configuration so every run input is injected, never compiled in.
package config
