package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Extra-Chill/url-cleaner/internal/api"
	"github.com/Extra-Chill/url-cleaner/internal/mode"
)

func newModeCmd(opts *globalOptions) *cobra.Command {
	var client string
	var clearOverride bool

	cmd := &cobra.Command{
		Use:   "mode [enforce|audit|off]",
		Short: "Show or change the daemon mode",
		Long: `Without arguments, prints the global mode and per-client overrides.
With a mode, sets it globally or, with --client, for one client IP.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			c := opts.client(cfg)
			ctx := cmd.Context()

			var resp *api.ModeResponse
			switch {
			case clearOverride:
				if client == "" {
					return fmt.Errorf("--clear requires --client")
				}
				resp, err = c.SetMode(ctx, api.SetModeRequest{Client: client, Clear: true})
			case len(args) == 1:
				m, perr := mode.Parse(args[0])
				if perr != nil {
					return perr
				}
				resp, err = c.SetMode(ctx, api.SetModeRequest{Mode: string(m), Client: client})
			default:
				resp, err = c.Mode(ctx)
			}
			if err != nil {
				return err
			}

			printMode(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "client IP for a per-client override")
	cmd.Flags().BoolVar(&clearOverride, "clear", false, "remove the override for --client")
	return cmd
}

func printMode(w io.Writer, resp *api.ModeResponse) {
	fmt.Fprintf(w, "Global: %s\n", resp.Global)
	clients := make([]string, 0, len(resp.Clients))
	for ip := range resp.Clients {
		clients = append(clients, ip)
	}
	sort.Strings(clients)
	for _, ip := range clients {
		fmt.Fprintf(w, "  %-20s %s\n", ip, resp.Clients[ip])
	}
}
