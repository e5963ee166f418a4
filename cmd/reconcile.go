package cmd

import (
	"strings"

	"tversky-reconcile/core/prompt"
	"tversky-reconcile/core/reconcile"
	"tversky-reconcile/feature/archive"
	"tversky-reconcile/feature/marketplace"
	"tversky-reconcile/feature/subjects"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resultsFlag   string
	nicknamesFlag string
	yesFlag       bool
	noFlag        bool
	dryRunFlag    bool
	archiveFlag   bool
)

// reconcileCmd verifies one HIT and marks its sessions reconciled.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile DATABASE HIT",
	Short: "Verify a HIT's submissions against the experiment database",
	Long: `Verify every completed, unreconciled session of a HIT against the assignments
workers submitted, then mark the verified sessions reconciled.

All changes are committed together, after every check passed. Any mismatch
rolls everything back.

Examples:
  # Reconcile a HIT by nickname, answering the prompt interactively
  reconcile experiment.sqlite pilot --results batch.csv --nicknames hits.yaml

  # Check without writing anything
  reconcile experiment.sqlite 3XJ1PQ8EXAMPLEHITID --results s3://exports/batch.csv --dry-run

  # Non-interactive, zeroing cookie expirations
  reconcile experiment.sqlite pilot --yes --archive`,
	Args: cobra.ExactArgs(2),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&resultsFlag, "results", "", "Batch-results export (path or s3://bucket/key); overrides MARKETPLACE_RESULTS")
	reconcileCmd.Flags().StringVar(&nicknamesFlag, "nicknames", "", "YAML file mapping HIT nicknames to IDs; overrides MARKETPLACE_NICKNAMES")
	reconcileCmd.Flags().BoolVar(&yesFlag, "yes", false, "Zero cookie expirations without asking")
	reconcileCmd.Flags().BoolVar(&noFlag, "no", false, "Keep cookie expirations without asking")
	reconcileCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Run every check, then discard all changes")
	reconcileCmd.Flags().BoolVar(&archiveFlag, "archive", false, "Upload the run report to object storage")
	reconcileCmd.MarkFlagsMutuallyExclusive("yes", "no")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rt, err := setup(args[0])
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg
	if resultsFlag != "" {
		cfg.Marketplace.Results = resultsFlag
	}
	if nicknamesFlag != "" {
		cfg.Marketplace.Nicknames = nicknamesFlag
	}
	if archiveFlag {
		cfg.Archive.Enabled = true
	}

	client, err := rt.storageClient(strings.HasPrefix(cfg.Marketplace.Results, "s3://") || cfg.Archive.Enabled)
	if err != nil {
		return err
	}

	registry, err := marketplace.LoadRegistry(cfg.Marketplace.Nicknames)
	if err != nil {
		return err
	}
	market := marketplace.NewClient(cfg.Marketplace, client, registry).WithLogger(rt.log)

	var confirm reconcile.Confirmer
	switch {
	case yesFlag:
		confirm = prompt.Fixed{Answer: true, Out: out}
	case noFlag:
		confirm = prompt.Fixed{Answer: false, Out: out}
	default:
		confirm = prompt.NewStdin(cmd.InOrStdin(), out)
	}

	r := reconcile.New(market, subjects.NewStore(rt.db), confirm, reconcile.Options{
		CompletionKeyField: cfg.Marketplace.CompletionKeyField,
		DryRun:             dryRunFlag,
	}).WithLogger(rt.log).WithOutput(out)

	rt.log.Info("Starting reconciliation", zap.String("hit", args[1]), zap.Bool("dry_run", dryRunFlag))
	report, runErr := r.Run(ctx, args[1])

	if cfg.Archive.Enabled {
		archiver := archive.NewArchiver(client, cfg.Storage.Bucket, cfg.Archive, rt.log)
		if _, err := archiver.Archive(ctx, report); err != nil {
			rt.log.Warn("Failed to archive run report", zap.Error(err))
		}
	}

	if runErr != nil {
		return runErr
	}

	rt.log.Info("Reconciliation report",
		zap.String("hit_id", report.HITID),
		zap.Int("submitted", report.Submitted),
		zap.Int("already_reconciled", report.AlreadyReconciled),
		zap.Int("verified", len(report.Verified)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Bool("committed", report.Committed),
	)
	return nil
}
