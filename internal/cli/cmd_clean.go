package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

func newCleanCmd(opts *globalOptions) *cobra.Command {
	var explain, remote bool

	cmd := &cobra.Command{
		Use:   "clean <url>...",
		Short: "Remove tracking parameters from URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if remote {
				client := opts.client(cfg)
				for _, u := range args {
					resp, err := client.Clean(cmd.Context(), u)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, resp.Cleaned)
					if explain {
						if resp.Audit {
							fmt.Fprintln(out, "  (audit mode, not rewritten)")
						}
						printReasons(out, resp.Decisions)
					}
				}
				return nil
			}

			engine, _, err := opts.localEngine(cfg)
			if err != nil {
				return err
			}
			for _, u := range args {
				if rules.Exempt(u) {
					fmt.Fprintln(out, u)
					if explain {
						fmt.Fprintln(out, "  exempt scheme")
					}
					continue
				}

				cleaned, decisions := engine.Trace(u)
				fmt.Fprintln(out, cleaned)
				if !explain {
					continue
				}
				if len(decisions) == 0 {
					_, d := rules.Explain(u, engine.Current())
					fmt.Fprintf(out, "  %s\n", d)
					continue
				}
				reasons := make([]string, len(decisions))
				for i, d := range decisions {
					reasons[i] = d.String()
				}
				printReasons(out, reasons)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "print the rule behind each change")
	cmd.Flags().BoolVar(&remote, "remote", false, "clean through the running daemon")
	return cmd
}

func printReasons(w io.Writer, reasons []string) {
	for _, r := range reasons {
		fmt.Fprintf(w, "  %s\n", r)
	}
}
