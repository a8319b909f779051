package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
	"wafconsole/core"
	"wafconsole/models"

	"github.com/spf13/cobra"
)

var (
	auditListLimit  int
	auditListOffset int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse the configuration change audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists recent configuration changes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditListLimit < 1 || auditListLimit > 500 {
			return fmt.Errorf("invalid --limit %d: must be between 1 and 500", auditListLimit)
		}

		client := newBackendClient()
		store := core.NewStore(client)
		if err := store.FetchAuditLogs(context.Background(), auditListLimit, auditListOffset); err != nil {
			return fmt.Errorf("fetching audit logs: %w", err)
		}
		result := store.AuditLogs()
		if result == nil || len(result.Entries) == 0 {
			fmt.Println("No audit entries found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tRESOURCE\tUSER\tCHANGE")
		for i := range result.Entries {
			entry := &result.Entries[i]
			resource := entry.ResourceType
			if entry.ResourceID != "" {
				resource += "/" + entry.ResourceID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.CreatedAt.Format(time.RFC3339), models.FormatAuditAction(entry.Action),
				resource, entry.User, entry.ChangeSummary())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d of %d entries\n", len(result.Entries), result.Total)
		return nil
	},
}

func init() {
	auditListCmd.Flags().IntVar(&auditListLimit, "limit", 50, "Maximum entries to return")
	auditListCmd.Flags().IntVar(&auditListOffset, "offset", 0, "Entries to skip for paging")
	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(auditCmd)
}
