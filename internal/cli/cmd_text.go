package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Extra-Chill/url-cleaner/internal/clipboard"
)

func newTextCmd(opts *globalOptions) *cobra.Command {
	var remote, lines bool

	cmd := &cobra.Command{
		Use:   "text",
		Short: "Clean the URLs in text read from stdin",
		Long: `Reads text from stdin and writes it back with every URL cleaned.
Pipe a clipboard through it, e.g. "pbpaste | url-cleaner text | pbcopy".
If cleaning fails or times out the text is written unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := opts.quietLogger(cfg)

			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			text := string(data)

			var cleaner clipboard.TextCleaner
			var document func() string
			if remote {
				client := opts.client(cfg)
				cleaner = client
				if r, err := client.Rules(ctx); err == nil {
					document = func() string { return r.Text }
				}
			} else {
				engine, _, err := opts.localEngine(cfg)
				if err != nil {
					return err
				}
				cleaner = clipboard.LocalCleaner{Engine: engine}
				document = engine.Text
			}

			relayOpts := []clipboard.Option{
				clipboard.WithTimeout(cfg.Clipboard.Timeout),
				clipboard.WithLogger(logger),
			}
			if document != nil {
				relayOpts = append(relayOpts, clipboard.WithGuard(clipboard.DocumentGuard(document)))
			}
			relay := clipboard.NewRelay(cleaner, relayOpts...)

			out := cmd.OutOrStdout()
			if !lines {
				_, err := fmt.Fprint(out, relay.Clean(ctx, text))
				return err
			}

			trailing := strings.HasSuffix(text, "\n")
			items := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
			result := strings.Join(relay.CleanItems(ctx, items), "\n")
			if trailing {
				result += "\n"
			}
			_, err = fmt.Fprint(out, result)
			return err
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "clean through the running daemon")
	cmd.Flags().BoolVarP(&lines, "lines", "l", false, "treat each line as a separate item")
	return cmd
}
