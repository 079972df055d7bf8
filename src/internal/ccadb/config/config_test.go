// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccadbchain "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/chain"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/config"
	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "yaml config",
			file: "audit.yaml",
			content: `
dataset: export.csv
revocationList: revoked.txt
policy:
  sources: [mozilla, chrome]
  operation: intersection
exclusions:
  - "AA:BB:CC"
now: "2025-06-01T00:00:00Z"
workers: 8
output:
  fingerprints: out/fingerprints.csv
  forest: out/forest.json
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "export.csv", cfg.Dataset)
				assert.Equal(t, "revoked.txt", cfg.RevocationList)
				assert.Equal(t, []string{"mozilla", "chrome"}, cfg.Policy.Sources)
				assert.Equal(t, "intersection", cfg.Policy.Operation)
				assert.Equal(t, 8, cfg.Workers)
				assert.Equal(t, "out/fingerprints.csv", cfg.Output.Fingerprints)
				assert.Equal(t, "out/forest.json", cfg.Output.Forest)
			},
		},
		{
			name: "json config",
			file: "audit.json",
			content: `{
  "dataset": "export.csv",
  "policy": {"sources": ["mozilla"], "operation": "union"}
}`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "export.csv", cfg.Dataset)
				assert.Equal(t, []string{"mozilla"}, cfg.Policy.Sources)
				// Missing workers default to a single-worker walk.
				assert.Equal(t, 1, cfg.Workers)
			},
		},
		{
			name: "json schema rejects unknown vendor",
			file: "audit.json",
			content: `{
  "dataset": "export.csv",
  "policy": {"sources": ["netscape"], "operation": "union"}
}`,
			wantErr: true,
		},
		{
			name: "json schema rejects unknown operation",
			file: "audit.json",
			content: `{
  "dataset": "export.csv",
  "policy": {"sources": ["mozilla"], "operation": "xor"}
}`,
			wantErr: true,
		},
		{
			name: "json schema rejects unknown fields",
			file: "audit.json",
			content: `{
  "dataset": "export.csv",
  "policy": {"sources": ["mozilla"], "operation": "union"},
  "datset": "typo.csv"
}`,
			wantErr: true,
		},
		{
			name: "json schema requires dataset and policy",
			file: "audit.json",
			content: `{
  "workers": 4
}`,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "audit.yml",
			content: "dataset: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, tt.file, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestChainPolicy(t *testing.T) {
	cfg := &config.Config{}
	cfg.Policy.Sources = []string{"Mozilla", "chrome"}
	cfg.Policy.Operation = "intersection"
	cfg.Policy.RequiredTrustBits = []string{" Server Authentication "}

	policy, err := cfg.ChainPolicy()
	require.NoError(t, err)
	assert.Equal(t, []ccadbrecords.Vendor{ccadbrecords.VendorMozilla, ccadbrecords.VendorChrome}, policy.Sources)
	assert.Equal(t, ccadbchain.OpIntersection, policy.Operation)
	assert.Equal(t, []ccadbrecords.TrustBit{ccadbrecords.TrustBitServerAuth}, policy.RequiredTrustBits)

	cfg.Policy.Sources = []string{"netscape"}
	_, err = cfg.ChainPolicy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netscape")

	cfg.Policy.Sources = []string{"mozilla"}
	cfg.Policy.Operation = "xor"
	_, err = cfg.ChainPolicy()
	require.Error(t, err)
}

func TestExclusionList(t *testing.T) {
	cfg := &config.Config{Exclusions: []string{"aa:bb", ""}}
	ex := cfg.ExclusionList()
	assert.True(t, ex.Contains("AABB"))
	assert.False(t, ex.Contains(""))
}

func TestEvaluationTime(t *testing.T) {
	fallback := time.Date(2025, 6, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))

	cfg := &config.Config{}
	got, err := cfg.EvaluationTime(fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback.UTC(), got)
	assert.Equal(t, time.UTC, got.Location())

	cfg.Now = "2024-12-31T23:59:59+01:00"
	got, err = cfg.EvaluationTime(fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 22, 59, 59, 0, time.UTC), got)

	cfg.Now = "yesterday"
	_, err = cfg.EvaluationTime(fallback)
	require.Error(t, err)
}
