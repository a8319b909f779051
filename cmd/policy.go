package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"wafconsole/core"
	"wafconsole/logger"
	"wafconsole/models"

	"github.com/spf13/cobra"
)

var policySetModeCRS bool

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and mutate WAF policies from the terminal",
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all configured policies with their modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient()
		store := core.NewStore(client)
		if err := store.FetchStatus(context.Background()); err != nil {
			return fmt.Errorf("fetching WAF status: %w", err)
		}
		status := store.Status()

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "HOST\tMODE\tCRS\tEXCEPTIONS\tRULES\tVERSION\tUPDATED BY")
		fmt.Fprintf(w, "(global)\t%s\t%t\t%d\t%d\t%d\t%s\n",
			status.GlobalPolicy.Mode, status.GlobalPolicy.EnableCRS,
			len(status.GlobalPolicy.Exceptions.Paths)+len(status.GlobalPolicy.Exceptions.Methods)+len(status.GlobalPolicy.Exceptions.IPAllow),
			len(status.GlobalPolicy.CustomRules), status.GlobalPolicy.Version, status.GlobalPolicy.UpdatedBy)

		hosts := make([]string, 0, len(status.HostPolicies))
		for host := range status.HostPolicies {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)
		for _, host := range hosts {
			p := status.HostPolicies[host]
			fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\t%d\t%s\n",
				host, p.Mode, p.EnableCRS,
				len(p.Exceptions.Paths)+len(p.Exceptions.Methods)+len(p.Exceptions.IPAllow),
				len(p.CustomRules), p.Version, p.UpdatedBy)
		}
		return w.Flush()
	},
}

var policySetModeCmd = &cobra.Command{
	Use:   "set-mode <host> <On|DetectionOnly|Off>",
	Short: "Changes the enforcement mode for a host's policy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := args[0]
		mode := models.WAFMode(args[1])
		switch mode {
		case models.WAFModeOn, models.WAFModeDetectionOnly, models.WAFModeOff:
		default:
			return fmt.Errorf("invalid mode %q: must be On, DetectionOnly or Off", args[1])
		}

		client := newBackendClient()
		store := core.NewStore(client)
		sequencer := core.NewSequencer(client, store)

		draft := models.PolicyDraft{Host: host, Mode: mode, EnableCRS: policySetModeCRS}
		outcome := sequencer.SavePolicy(context.Background(), draft, true)
		if outcome.Err != nil {
			return fmt.Errorf("updating mode for %s: %w", host, outcome.Err)
		}
		logger.Info("Policy mode for %s set to %s.", host, mode)
		fmt.Printf("Policy mode for %s set to %s.\n", host, mode)
		return nil
	},
}

var policyApplyCmd = &cobra.Command{
	Use:   "apply <host>",
	Short: "Materializes the saved policy for a host into enforcement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := args[0]

		client := newBackendClient()
		store := core.NewStore(client)
		sequencer := core.NewSequencer(client, store)

		if err := sequencer.Apply(context.Background(), host); err != nil {
			return fmt.Errorf("applying configuration for %s: %w", host, err)
		}
		fmt.Printf("Configuration applied for %s.\n", host)
		return nil
	},
}

func init() {
	policySetModeCmd.Flags().BoolVar(&policySetModeCRS, "enable-crs", true, "Keep the managed baseline rule set enabled")
	policyCmd.AddCommand(policyListCmd)
	policyCmd.AddCommand(policySetModeCmd)
	policyCmd.AddCommand(policyApplyCmd)
	rootCmd.AddCommand(policyCmd)
}
