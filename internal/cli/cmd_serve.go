package cli

import (
	"github.com/spf13/cobra"

	"github.com/Extra-Chill/url-cleaner/internal/daemon"
	"github.com/Extra-Chill/url-cleaner/internal/mode"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var proxyListen, apiListen, rulesFile, modeName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the navigation proxy and management API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("proxy") {
				cfg.Proxy.Listen = proxyListen
			}
			if flags.Changed("api") {
				cfg.API.Listen = apiListen
			}
			if flags.Changed("rules") {
				cfg.Rules.File = rulesFile
			}
			if flags.Changed("mode") {
				if _, err := mode.Parse(modeName); err != nil {
					return err
				}
				cfg.Mode = modeName
			}

			logger, logs := opts.logger(cfg)
			d := daemon.New(cfg, logger, logs, version)
			return d.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&proxyListen, "proxy", "", "proxy listen address (empty disables)")
	cmd.Flags().StringVar(&apiListen, "api", "", "management API listen address (empty disables)")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "rules file")
	cmd.Flags().StringVar(&modeName, "mode", "", "initial mode: enforce, audit or off")
	return cmd
}
