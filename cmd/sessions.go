package cmd

import (
	"fmt"
	"text/tabwriter"

	"tversky-reconcile/feature/marketplace"
	"tversky-reconcile/feature/subjects"

	"github.com/spf13/cobra"
)

// sessionsCmd lists a HIT's sessions without touching them
var sessionsCmd = &cobra.Command{
	Use:   "sessions DATABASE HIT",
	Short: "List the sessions recorded for a HIT and their reconciliation state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(args[0])
		if err != nil {
			return err
		}
		defer rt.close()

		nicknames := rt.cfg.Marketplace.Nicknames
		if nicknamesFlag != "" {
			nicknames = nicknamesFlag
		}
		registry, err := marketplace.LoadRegistry(nicknames)
		if err != nil {
			return err
		}
		hitID := args[1]
		if id, ok := registry.Lookup(hitID); ok {
			hitID = id
		}

		sessions, err := subjects.NewStore(rt.db).Sessions(cmd.Context(), hitID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SN\tASSIGNMENT\tWORKER\tCOMPLETION KEY\tRECONCILED")
		for _, s := range sessions {
			key := "-"
			if s.CompletionKey != nil {
				key = fmt.Sprintf("%d", *s.CompletionKey)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", s.SN, orDash(s.AssignmentID), orDash(s.WorkerID), key, s.Reconciled)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d sessions for HIT %s\n", len(sessions), hitID)
		return nil
	},
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func init() {
	sessionsCmd.Flags().StringVar(&nicknamesFlag, "nicknames", "", "YAML file mapping HIT nicknames to IDs")
	RootCmd.AddCommand(sessionsCmd)
}
