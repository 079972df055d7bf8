// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/cli"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/logger"
)

const testVersion = "1.3.3.7-testing"

const testDataset = `SHA-256 Fingerprint,Parent SHA-256 Fingerprint,Subject,Common Name,Valid From,Valid To,Revocation Status,Revocation List Status,Trust Bits,Mozilla Status,Microsoft Status,Chrome Status,Apple Status
AA00000000000000000000000000000000000000000000000000000000000000,,CN=Test Root,Test Root,2020.01.01,2035.01.01,,,Server Authentication,Included,,,
BB00000000000000000000000000000000000000000000000000000000000000,AA00000000000000000000000000000000000000000000000000000000000000,CN=Test Issuing,Test Issuing,2020.01.01,2035.01.01,,,Server Authentication,,,,
CC00000000000000000000000000000000000000000000000000000000000000,AA00000000000000000000000000000000000000000000000000000000000000,CN=Test Expired,Test Expired,2020.01.01,2021.01.01,,,Server Authentication,,,,
`

// runCLI executes the root command with the given arguments and returns
// the captured log output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = append([]string{"ccadb-chain-resolver"}, args...)

	var buf bytes.Buffer
	log := logger.NewCLILogger()
	log.SetOutput(&buf)

	err := cli.Execute(context.Background(), testVersion, log)
	return buf.String(), err
}

func writeTestConfig(t *testing.T, dir, dataset string, outputs bool) string {
	t.Helper()

	content := "dataset: " + dataset + "\n" +
		"policy:\n" +
		"  sources: [mozilla]\n" +
		"  operation: union\n" +
		"now: \"2025-06-01T00:00:00Z\"\n"
	if outputs {
		content += "output:\n" +
			"  fingerprints: " + filepath.Join(dir, "fingerprints.csv") + "\n" +
			"  forest: " + filepath.Join(dir, "forest.json") + "\n"
	}

	path := filepath.Join(dir, "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAuditCommand(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(testDataset), 0644))
	configPath := writeTestConfig(t, dir, dataset, true)

	output, err := runCLI(t, "audit", "-c", configPath, "--tree")
	require.NoError(t, err)
	assert.True(t, cli.OperationPerformed)
	assert.True(t, cli.OperationPerformedSuccessfully)

	assert.Contains(t, output, "Loaded 3 records")
	assert.Contains(t, output, "Validated 1 intermediates across 1 roots (1 excluded by validation)")
	assert.Contains(t, output, "Test Root")
	assert.Contains(t, output, "expired")

	// Artifacts are written to the configured destinations.
	fingerprints, err := os.ReadFile(filepath.Join(dir, "fingerprints.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(fingerprints), "root,AA000000")
	assert.Contains(t, string(fingerprints), "intermediate,BB000000")
	assert.NotContains(t, string(fingerprints), "CC000000")

	forest, err := os.ReadFile(filepath.Join(dir, "forest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(forest), `"generatedAt": "2025-06-01T00:00:00Z"`)
}

func TestAuditCommandErrors(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(testDataset), 0644))

	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{
			name: "missing config flag",
			args: func(t *testing.T) []string {
				return []string{"audit"}
			},
		},
		{
			name: "absent config file",
			args: func(t *testing.T) []string {
				return []string{"audit", "-c", filepath.Join(dir, "nope.yaml")}
			},
		},
		{
			name: "absent dataset",
			args: func(t *testing.T) []string {
				cfg := writeTestConfig(t, t.TempDir(), filepath.Join(dir, "nope.csv"), false)
				return []string{"audit", "-c", cfg}
			},
		},
		{
			name: "invalid now override",
			args: func(t *testing.T) []string {
				cfg := writeTestConfig(t, t.TempDir(), dataset, false)
				return []string{"audit", "-c", cfg, "--now", "yesterday"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args(t)...)
			require.Error(t, err)
			assert.False(t, cli.OperationPerformedSuccessfully)
		})
	}
}

func TestAuditCommandDatasetOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir, filepath.Join(dir, "configured.csv"), false)

	override := filepath.Join(dir, "override.csv")
	require.NoError(t, os.WriteFile(override, []byte(testDataset), 0644))

	output, err := runCLI(t, "audit", "-c", configPath, "--dataset", override)
	require.NoError(t, err)
	assert.Contains(t, output, "override.csv")
}

func TestFetchCommand(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "CLI Fetch CA"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(der)
	}))
	defer server.Close()

	dir := t.TempDir()
	listPath := filepath.Join(dir, "fingerprints.csv")
	list := "type,fingerprint\nroot,AA11\nintermediate,BB22\n"
	require.NoError(t, os.WriteFile(listPath, []byte(list), 0644))

	outDir := filepath.Join(dir, "certs")
	output, err := runCLI(t, "fetch", listPath, "-o", outDir, "--mirror", server.URL+"/?d=%s")
	require.NoError(t, err)
	assert.True(t, cli.OperationPerformedSuccessfully)
	assert.Contains(t, output, "Archived 2 certificates (0 failures)")

	for _, name := range []string{"AA11.pem", "BB22.pem"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "-----BEGIN CERTIFICATE-----"))
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "resolve")
	require.Error(t, err)
	assert.False(t, cli.OperationPerformed)
}
