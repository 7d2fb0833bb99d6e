package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

func newRulesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage the rules document",
	}

	cmd.AddCommand(
		newRulesShowCmd(opts),
		newRulesCheckCmd(opts),
		newRulesResetCmd(opts),
		newRulesPathCmd(opts),
	)
	return cmd
}

func newRulesShowCmd(opts *globalOptions) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active rules document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if remote {
				resp, err := opts.client(cfg).Rules(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
				return nil
			}

			engine, _, err := opts.localEngine(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), engine.Text())
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "read from the running daemon")
	return cmd
}

func newRulesCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Report rule lines that are ignored and summarize the rest",
		Long:  `Checks the given file, "-" for stdin, or the configured rules file.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rs   *rules.RuleSet
				text string
				err  error
			)
			switch {
			case len(args) == 1 && args[0] == "-":
				rs, text, err = rules.ParseReader(cmd.InOrStdin())
			case len(args) == 1:
				rs, text, err = rules.LoadFromFile(args[0])
			default:
				cfg, lerr := opts.load()
				if lerr != nil {
					return lerr
				}
				engine, _, lerr := opts.localEngine(cfg)
				if lerr != nil {
					return lerr
				}
				rs, text = engine.Current(), engine.Text()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			issues := rules.Lint(text)
			for _, is := range issues {
				fmt.Fprintf(out, "line %d: %s: %q\n", is.Line, is.Reason, is.Text)
			}

			st := rs.Stats()
			fmt.Fprintf(out, "%d patterns, %d domains, %d whitelisted, %d ignored lines\n",
				st.Total()-st.Whitelisted, st.Domains, st.Whitelisted, len(issues))
			fmt.Fprintf(out, "revision %s\n", rules.Revision(text))

			if len(issues) > 0 {
				return fmt.Errorf("%d ignored lines", len(issues))
			}
			return nil
		},
	}
}

func newRulesResetCmd(opts *globalOptions) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the rules document with the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if remote {
				resp, err := opts.client(cfg).ResetRules(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rules reset (revision %s).\n", resp.Revision)
				return nil
			}

			_, st, err := opts.localEngine(cfg)
			if err != nil {
				return err
			}
			if err := st.Save(rules.DefaultRules); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rules reset in %s.\n", st.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "reset through the running daemon")
	return cmd
}

func newRulesPathCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the rules file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Rules.File)
			return nil
		},
	}
}
