// Package cli implements the url-cleaner command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Extra-Chill/url-cleaner/internal/api"
	"github.com/Extra-Chill/url-cleaner/internal/config"
	"github.com/Extra-Chill/url-cleaner/internal/logging"
	"github.com/Extra-Chill/url-cleaner/internal/rules"
	"github.com/Extra-Chill/url-cleaner/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "url-cleaner",
		Short:         "Strip tracking parameters from URLs in navigations and copied text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newCleanCmd(opts),
		newTextCmd(opts),
		newRulesCmd(opts),
		newModeCmd(opts),
		newStatusCmd(opts),
		newLogsCmd(opts),
		newConfigCmd(opts),
	)

	return root
}

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// logger builds the daemon logger from cfg.
func (o *globalOptions) logger(cfg *config.Config) (*slog.Logger, *logging.Buffer) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

// quietLogger is used by one-shot commands: warnings only unless --log-level is set.
func (o *globalOptions) quietLogger(cfg *config.Config) *slog.Logger {
	level := "warn"
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, _ := logging.NewWriter(os.Stderr, level, cfg.Log.Format)
	return logger
}

func (o *globalOptions) client(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.API.URL, cfg.API.Token)
}

// localEngine loads the stored rules document into a new engine.
// The built-in defaults are used when nothing is stored yet.
func (o *globalOptions) localEngine(cfg *config.Config) (*rules.Engine, *store.Store, error) {
	logger := o.quietLogger(cfg)
	st := store.New(cfg.Rules.File, logger)
	engine := rules.NewEngine(rules.WithLogger(logger))

	text, err := st.Load()
	switch {
	case errors.Is(err, store.ErrEmpty):
		text = rules.DefaultRules
	case err != nil:
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}
	engine.LoadText(text)
	return engine, st, nil
}
