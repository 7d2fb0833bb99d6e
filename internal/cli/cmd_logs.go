package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd(opts *globalOptions) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent cleaning history from the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			resp, err := opts.client(cfg).Logs(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Logs) == 0 {
				fmt.Fprintln(out, "No history.")
				return nil
			}
			for _, e := range resp.Logs {
				fmt.Fprintf(out, "%s  %-10s %-9s %s\n", e.Timestamp.Local().Format("15:04:05"), e.Source, e.Action, e.Original)
				if e.Cleaned != "" && e.Cleaned != e.Original {
					fmt.Fprintf(out, "%31s %s\n", "->", e.Cleaned)
				}
			}
			fmt.Fprintf(out, "%d of %d\n", len(resp.Logs), resp.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many events")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum events to show")
	return cmd
}
