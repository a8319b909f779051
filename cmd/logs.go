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
	logsSearchText   string
	logsSearchStatus string
	logsSearchHost   string
	logsSearchRuleID string
	logsSearchSince  time.Duration
	logsSearchLimit  int
	logsSearchOffset int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the WAF request log store",
}

var logsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches request logs using the console's filter fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		if logsSearchLimit < 1 || logsSearchLimit > 1000 {
			return fmt.Errorf("invalid --limit %d: must be between 1 and 1000", logsSearchLimit)
		}
		filter := models.LogSearchFilter{
			FreeText: logsSearchText,
			Status:   logsSearchStatus,
			Host:     logsSearchHost,
			RuleID:   logsSearchRuleID,
		}
		end := time.Now().UTC()
		tr := models.TimeRange{Start: end.Add(-logsSearchSince), End: end}
		query := models.BuildLogQuery(filter, tr, logsSearchLimit, logsSearchOffset)

		client := newBackendClient()
		store := core.NewStore(client)
		if err := store.SearchLogs(context.Background(), query); err != nil {
			return fmt.Errorf("searching logs: %w", err)
		}
		result := store.Logs()
		if result == nil || len(result.Entries) == 0 {
			fmt.Printf("No log entries matched %q in the last %s.\n", query.Query, logsSearchSince)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tHOST\tSTATUS\tMETHOD\tPATH\tRULE\tCLIENT")
		for _, entry := range result.Entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				entry.Timestamp.Format(time.RFC3339), entry.Host, entry.Status,
				entry.Method, entry.Path, entry.RuleID, entry.ClientIP)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d of %d entries (query: %s)\n", len(result.Entries), result.Total, query.Query)
		return nil
	},
}

func init() {
	logsSearchCmd.Flags().StringVar(&logsSearchText, "search", "", "Free-text match against the log message")
	logsSearchCmd.Flags().StringVar(&logsSearchStatus, "status", "", "Filter by HTTP status code")
	logsSearchCmd.Flags().StringVar(&logsSearchHost, "host", "", "Filter by host")
	logsSearchCmd.Flags().StringVar(&logsSearchRuleID, "rule-id", "", "Filter by matched rule id")
	logsSearchCmd.Flags().DurationVar(&logsSearchSince, "since", 24*time.Hour, "How far back to search")
	logsSearchCmd.Flags().IntVar(&logsSearchLimit, "limit", 100, "Maximum entries to return")
	logsSearchCmd.Flags().IntVar(&logsSearchOffset, "offset", 0, "Entries to skip for paging")
	logsCmd.AddCommand(logsSearchCmd)
	rootCmd.AddCommand(logsCmd)
}
