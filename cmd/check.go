package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"tversky-reconcile/feature/subjects"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkJSON bool

// checkCmd verifies the experiment database schema
var checkCmd = &cobra.Command{
	Use:   "check DATABASE",
	Short: "Check that the experiment database has the Subjects and MTurk columns the reconciler needs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(args[0])
		if err != nil {
			return err
		}
		defer rt.close()

		rt.log.Info("Checking database schema...", zap.String("driver", rt.cfg.Database.Driver))
		report, err := subjects.CheckSchema(rt.db)
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}

		if checkJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		if report.Matched {
			rt.log.Info("Database schema matches expected definition.", zap.String("driver", report.Driver))
			return nil
		}

		rt.log.Warn("Database schema mismatches found", zap.String("driver", report.Driver))
		tables := make([]string, 0, len(report.Tables))
		for table := range report.Tables {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		for _, table := range tables {
			tbl := report.Tables[table]
			if tbl.Status != "ok" {
				rt.log.Warn("Missing Columns", zap.String("table", table), zap.String("status", tbl.Status), zap.Strings("columns", tbl.MissingColumns))
			}
		}
		for _, e := range report.Errors {
			rt.log.Error("Inspection Error", zap.String("error", e))
		}
		return fmt.Errorf("database schema does not match")
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the schema report as JSON")
	RootCmd.AddCommand(checkCmd)
}
