package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			st, err := opts.client(cfg).Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:   %s (v%s, up %s)\n", st.Status, st.Version, st.Uptime)
			fmt.Fprintf(out, "Mode:     %s\n", st.Mode)
			fmt.Fprintf(out, "Rules:    %d patterns, %d domains, revision %.12s\n", st.RuleCount, st.Rules.Domains, st.Revision)
			fmt.Fprintf(out, "Loaded:   %s\n", st.RulesLoadedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Activity: %d cleaned, %d audit\n", st.Totals.Cleaned, st.Totals.Audit)
			return nil
		},
	}
}
