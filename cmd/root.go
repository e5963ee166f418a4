package cmd

import (
	"fmt"
	"os"

	"tversky-reconcile/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tversky-reconcile",
	Short: "Reconcile marketplace submissions with Tversky sessions",
	Long: `tversky-reconcile cross-checks the assignments workers submitted for a HIT
against the sessions recorded in a Tversky experiment database, and marks every
verified session as reconciled in a single transaction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config keeps ISO8601 timestamps for operators
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Database driver (sqlite, mysql); overrides DATABASE_DRIVER")
}
