// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	ccadbchain "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/chain"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/config"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/fetch"
	ccadbrecords "github.com/H0llyW00dzZ/ccadb-chain-resolver/src/internal/ccadb/records"
	"github.com/H0llyW00dzZ/ccadb-chain-resolver/src/logger"
	"github.com/spf13/cobra"
)

var (
	// OperationPerformed reports whether a subcommand ran to the point
	// of producing output.
	OperationPerformed bool
	// OperationPerformedSuccessfully reports whether the last run
	// completed without a fatal condition.
	OperationPerformedSuccessfully bool
)

var (
	configFile string
	datasetArg string
	nowArg     string
	printTree  bool

	fetchOutDir  string
	fetchMirror  string
	fetchWorkers int
)

// Execute runs the root command, handling any errors that occur during execution.
//
// Parameters:
//   - ctx: Context for cancellation propagated into subcommands
//   - version: Application version string
//   - log: Destination for user-facing output
//
// Returns:
//   - error: The first fatal error encountered by a subcommand
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	rootCmd := &cobra.Command{
		Use:           "ccadb-chain-resolver",
		Short:         "CCADB trust-chain discovery and validation",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a CCADB export and emit validated chains per trusted root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), log)
		},
	}
	auditCmd.Flags().StringVarP(&configFile, "config", "c", "", "run configuration file (.json, .yaml, .yml)")
	auditCmd.Flags().StringVar(&datasetArg, "dataset", "", "override the configured dataset path")
	auditCmd.Flags().StringVar(&nowArg, "now", "", "fixed RFC3339 evaluation instant (default: current time)")
	auditCmd.Flags().BoolVarP(&printTree, "tree", "t", false, "print an ASCII tree per root")
	_ = auditCmd.MarkFlagRequired("config")

	fetchCmd := &cobra.Command{
		Use:   "fetch [FINGERPRINT_CSV]",
		Short: "Archive certificates for an emitted fingerprint set from a CT-log mirror",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), version, log, args[0])
		},
	}
	fetchCmd.Flags().StringVarP(&fetchOutDir, "out", "o", "certs", "output directory for archived PEM files")
	fetchCmd.Flags().StringVar(&fetchMirror, "mirror", fetch.DefaultMirrorURL, "mirror URL template with a %s fingerprint verb")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", fetch.DefaultWorkers, "download worker-pool size")

	rootCmd.AddCommand(auditCmd, fetchCmd)

	err := rootCmd.ExecuteContext(ctx)
	OperationPerformedSuccessfully = err == nil && OperationPerformed
	return err
}

// runAudit executes the full pipeline: load the export and revocation
// feed, select roots per policy, build and walk the forest, then write
// the configured artifacts. Validation findings are logged and never
// abort the run; schema errors, duplicate fingerprints, and short
// identifier collisions do.
func runAudit(ctx context.Context, log logger.Logger) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if datasetArg != "" {
		cfg.Dataset = datasetArg
	}
	if nowArg != "" {
		cfg.Now = nowArg
	}

	policy, err := cfg.ChainPolicy()
	if err != nil {
		return err
	}

	now, err := cfg.EvaluationTime(time.Now())
	if err != nil {
		return err
	}

	recs, err := ccadbrecords.LoadCSVFile(cfg.Dataset)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d records from %s", len(recs), cfg.Dataset)

	revList := ccadbchain.RevocationList{}
	if cfg.RevocationList != "" {
		revList, err = ccadbchain.LoadRevocationListFile(cfg.RevocationList)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d revoked fingerprints from %s", len(revList), cfg.RevocationList)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	report, auditErr := ccadbchain.Audit(recs, policy, cfg.ExclusionList(), revList, now, cfg.Workers)
	OperationPerformed = true

	logFindings(log, report)

	if auditErr != nil {
		var collision *ccadbchain.CollisionError
		if errors.As(auditErr, &collision) {
			log.Println(ccadbchain.RenderCollisionTable(collision))
		}
		return auditErr
	}

	log.Println(ccadbchain.RenderResultsTable(report.Forest, report.Results))

	if printTree {
		for _, res := range report.Results {
			log.Println(ccadbchain.RenderASCIITree(report.Forest, res))
		}
	}

	if cfg.Output.Fingerprints != "" {
		if err := writeFingerprints(cfg.Output.Fingerprints, report.Results); err != nil {
			return err
		}
		log.Printf("Wrote fingerprint set to %s", cfg.Output.Fingerprints)
	}

	if cfg.Output.Forest != "" {
		if err := writeForest(cfg.Output.Forest, report, now); err != nil {
			return err
		}
		log.Printf("Wrote serialized forest to %s", cfg.Output.Forest)
	}

	return nil
}

// logFindings reports the run-level recoverable findings.
func logFindings(log logger.Logger, report *ccadbchain.AuditReport) {
	if report.EmptyRootSet {
		log.Println("Policy selected no roots; check the configured sources and operation.")
	}
	for _, fp := range report.Orphans {
		log.Printf("Orphaned record %s: parent fingerprint resolves to no loaded record", fp)
	}
	for _, fp := range report.Detached {
		log.Printf("Detached record %s: unreachable from every root record", fp)
	}
	for _, amb := range report.Ambiguities {
		log.Printf("Ambiguous parent data: %s reachable from %s, assigned to %s",
			amb.Fingerprint, amb.OtherRoot, amb.OwnerRoot)
	}
	log.Printf("Validated %d intermediates across %d roots (%d excluded by validation)",
		report.ValidatedCount(), len(report.Results), report.ExcludedCount())
}

func writeFingerprints(path string, results []ccadbchain.ChainResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cli: failed to create fingerprint output: %w", err)
	}
	defer f.Close()
	return ccadbchain.WriteFingerprintCSV(f, results)
}

func writeForest(path string, report *ccadbchain.AuditReport, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cli: failed to create forest output: %w", err)
	}
	defer f.Close()
	doc := ccadbchain.SerializeForest(report.Forest, report.Results, now)
	return ccadbchain.WriteForestJSON(f, doc)
}

// runFetch archives certificates for an emitted fingerprint set.
// Per-fingerprint failures are logged and the batch continues.
func runFetch(ctx context.Context, version string, log logger.Logger, listPath string) error {
	fingerprints, err := fetch.ReadFingerprintListFile(listPath)
	if err != nil {
		return err
	}
	log.Printf("Fetching %d certificates into %s", len(fingerprints), fetchOutDir)

	downloader := fetch.NewDownloader(version)
	downloader.MirrorURL = fetchMirror
	downloader.Workers = fetchWorkers

	summary, err := downloader.FetchCertificates(ctx, fingerprints, fetchOutDir)
	if summary != nil {
		OperationPerformed = true
		for _, failure := range summary.Failures {
			log.Printf("Failed to fetch %s: %v", failure.Fingerprint, failure.Err)
		}
		log.Printf("Archived %d certificates (%d failures)", len(summary.Fetched), len(summary.Failures))
	}
	return err
}
