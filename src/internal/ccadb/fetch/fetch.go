// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/helper/gc"
)

// DefaultMirrorURL is the CT-log mirror URL template; the fingerprint
// replaces the %s verb.
const DefaultMirrorURL = "https://crt.sh/?d=%s"

// DefaultWorkers is the download worker-pool size when the caller does
// not configure one.
const DefaultWorkers = 4

// HTTPConfig holds HTTP client configuration for certificate downloads.
type HTTPConfig struct {
	Timeout   time.Duration // HTTP request timeout
	Version   string        // Application version for User-Agent
	UserAgent string        // Custom User-Agent string, if empty will be constructed from Version

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPConfig creates a new HTTP configuration with default values.
//
// It initializes the configuration with a default timeout of 10 seconds
// and the provided application version.
//
// Parameters:
//   - version: Application version string
//
// Returns:
//   - *HTTPConfig: New HTTP configuration
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout:   10 * time.Second,
		Version:   version,
		UserAgent: "",
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("CCADB-Chain-Resolver/%s (+https://github.com/H0llyW00dzZ/ccadb-chain-resolver)", c.Version)
}

// Client returns an HTTP client configured with the current timeout.
//
// It creates or reuses an http.Client, ensuring it uses the configured timeout.
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		c.client = &http.Client{Timeout: c.Timeout}
		return c.client
	}

	if c.client.Timeout != c.Timeout {
		c.client.Timeout = c.Timeout
	}

	return c.client
}

// Failure names one fingerprint whose download or decode failed.
// Per-item failures accumulate; they never abort the batch.
type Failure struct {
	Fingerprint string
	Err         error
}

// Summary reports the outcome of one download batch.
type Summary struct {
	// Fetched lists fingerprints archived successfully, in completion order.
	Fetched []string
	// Failures lists per-fingerprint download or decode errors.
	Failures []Failure
}

// Downloader archives certificates for an emitted fingerprint set from
// a public CT-log mirror. It is the archive-download collaborator at
// the engine boundary: the only component here that performs network
// I/O, with its own bounded concurrency model.
type Downloader struct {
	// MirrorURL is the download URL template with a %s verb for the
	// fingerprint.
	MirrorURL string
	// Workers bounds concurrent downloads.
	Workers int
	// HTTPConfig configures the shared HTTP client.
	HTTPConfig *HTTPConfig
}

// NewDownloader creates a downloader with default mirror, worker-pool
// size, and HTTP configuration.
func NewDownloader(version string) *Downloader {
	return &Downloader{
		MirrorURL:  DefaultMirrorURL,
		Workers:    DefaultWorkers,
		HTTPConfig: NewHTTPConfig(version),
	}
}

// FetchCertificates downloads the certificate body for every
// fingerprint and writes one PEM file per certificate into dir, named
// by canonical fingerprint.
//
// Downloads run on a fixed worker pool. A failed fingerprint is
// recorded in the summary and the batch continues; only an unusable
// output directory or a cancelled context aborts the run.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - fingerprints: Canonical fingerprints to archive
//   - dir: Output directory, created if absent
//
// Returns:
//   - *Summary: Per-fingerprint outcomes
//   - error: Directory or context-level failure
func (d *Downloader) FetchCertificates(ctx context.Context, fingerprints []string, dir string) (*Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fetch: failed to create archive directory: %w", err)
	}

	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(fingerprints) {
		workers = len(fingerprints)
	}

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
		jobs    = make(chan string)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fp := range jobs {
				if err := d.fetchOne(ctx, fp, dir); err != nil {
					mu.Lock()
					summary.Failures = append(summary.Failures, Failure{Fingerprint: fp, Err: err})
					mu.Unlock()
					continue
				}
				mu.Lock()
				summary.Fetched = append(summary.Fetched, fp)
				mu.Unlock()
			}
		}()
	}

	for _, fp := range fingerprints {
		fp = ccadbrecords.CanonicalFingerprint(fp)
		if fp == "" {
			continue
		}
		select {
		case jobs <- fp:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return &summary, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return &summary, nil
}

// fetchOne downloads, decodes, and archives a single certificate.
func (d *Downloader) fetchOne(ctx context.Context, fingerprint, dir string) error {
	url := fmt.Sprintf(d.MirrorURL, fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.HTTPConfig.GetUserAgent())

	resp, err := d.HTTPConfig.Client().Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mirror returned status %d", resp.StatusCode)
	}

	// Get a buffer from the pool
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	cert, err := decodeCertificate(buf.Bytes())
	if err != nil {
		return err
	}

	path := filepath.Join(dir, fingerprint+".pem")
	if err := os.WriteFile(path, encodePEM(cert), 0o644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}

	return nil
}
