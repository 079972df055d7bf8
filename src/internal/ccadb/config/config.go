// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ccadbchain "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/chain"
	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is one audit run's configuration: the dataset and revocation
// inputs, the trust-selection policy, the exclusion list, and output
// destinations.
//
// The configuration can be loaded from a JSON or YAML file; JSON
// documents are additionally validated against an embedded schema so
// misspelled policy fields fail loudly instead of silently defaulting.
// Supported file extensions: .json, .yaml, .yml
type Config struct {
	// Dataset: Path to the CCADB CSV export
	Dataset string `json:"dataset" yaml:"dataset"`
	// RevocationList: Optional path to the independent revocation feed
	RevocationList string `json:"revocationList,omitempty" yaml:"revocationList,omitempty"`

	// Policy: Trust-selection policy applied to the record set
	Policy struct {
		// Sources: Vendor programs feeding the root selection
		Sources []string `json:"sources" yaml:"sources"`
		// Operation: "union" or "intersection"
		Operation string `json:"operation" yaml:"operation"`
		// RequiredTrustBits: Optional usage bits every selected root must carry
		RequiredTrustBits []string `json:"requiredTrustBits,omitempty" yaml:"requiredTrustBits,omitempty"`
	} `json:"policy" yaml:"policy"`

	// Exclusions: Root fingerprints whose intermediate discovery is skipped
	Exclusions []string `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`

	// Now: Optional fixed RFC3339 evaluation instant; empty means the
	// caller injects the current time
	Now string `json:"now,omitempty" yaml:"now,omitempty"`

	// Workers: Worker pool size for the per-root validation walk
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Output: Destination paths for run artifacts
	Output struct {
		// Fingerprints: Two-column type,fingerprint CSV
		Fingerprints string `json:"fingerprints,omitempty" yaml:"fingerprints,omitempty"`
		// Forest: Serialized forest JSON for offline inspection
		Forest string `json:"forest,omitempty" yaml:"forest,omitempty"`
	} `json:"output" yaml:"output"`
}

// schemaJSON is the embedded schema JSON configuration files are
// validated against before unmarshaling.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["dataset", "policy"],
  "properties": {
    "dataset": {"type": "string", "minLength": 1},
    "revocationList": {"type": "string"},
    "policy": {
      "type": "object",
      "required": ["sources", "operation"],
      "properties": {
        "sources": {
          "type": "array",
          "items": {"type": "string", "enum": ["mozilla", "microsoft", "chrome", "apple"]}
        },
        "operation": {"type": "string", "enum": ["union", "intersection"]},
        "requiredTrustBits": {"type": "array", "items": {"type": "string"}}
      },
      "additionalProperties": false
    },
    "exclusions": {"type": "array", "items": {"type": "string"}},
    "now": {"type": "string"},
    "workers": {"type": "integer", "minimum": 0},
    "output": {
      "type": "object",
      "properties": {
        "fingerprints": {"type": "string"},
        "forest": {"type": "string"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// detectConfigFormat determines the configuration file format based on file extension.
// It supports .json, .yaml, and .yml extensions for flexible configuration management.
//
// The function uses case-insensitive extension matching for cross-platform compatibility.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
// JSON documents are validated against the embedded schema first so schema
// violations name the offending field rather than surfacing later as a
// half-populated policy.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(schemaJSON),
			gojsonschema.NewBytesLoader(data),
		)
		if err != nil {
			return fmt.Errorf("failed to validate JSON config file: %w", err)
		}
		if !result.Valid() {
			var details []string
			for _, desc := range result.Errors() {
				details = append(details, desc.String())
			}
			return fmt.Errorf("invalid JSON config file: %s", strings.Join(details, "; "))
		}
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load reads and parses a run configuration file, applying defaults for
// any missing optional values.
//
// Parameters:
//   - configPath: Path to the configuration file (.json, .yaml, .yml)
//
// Returns:
//   - A pointer to the loaded Config struct with defaults applied
//   - An error if the configuration file cannot be read, validated, or parsed
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
		return nil, err
	}

	if config.Workers <= 0 {
		config.Workers = 1
	}

	return config, nil
}

// ChainPolicy converts the configured policy into the engine's
// immutable Policy value, rejecting unknown vendor names and set
// operations by name.
func (c *Config) ChainPolicy() (ccadbchain.Policy, error) {
	var policy ccadbchain.Policy

	for _, name := range c.Policy.Sources {
		vendor, ok := ccadbrecords.ParseVendor(name)
		if !ok {
			return policy, fmt.Errorf("config: unknown vendor source %q", name)
		}
		policy.Sources = append(policy.Sources, vendor)
	}

	op, err := ccadbchain.ParseSetOperation(c.Policy.Operation)
	if err != nil {
		return policy, err
	}
	policy.Operation = op

	for _, bit := range c.Policy.RequiredTrustBits {
		policy.RequiredTrustBits = append(policy.RequiredTrustBits, ccadbrecords.TrustBit(strings.TrimSpace(bit)))
	}

	return policy, nil
}

// ExclusionList converts the configured exclusion fingerprints into the
// engine's lookup form.
func (c *Config) ExclusionList() ccadbchain.ExclusionList {
	return ccadbchain.NewExclusionList(c.Exclusions)
}

// EvaluationTime resolves the injected "now" for the run: the fixed
// configured instant when present, otherwise the supplied fallback.
func (c *Config) EvaluationTime(fallback time.Time) (time.Time, error) {
	if c.Now == "" {
		return fallback.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, c.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: invalid now timestamp %q: %w", c.Now, err)
	}
	return t.UTC(), nil
}
