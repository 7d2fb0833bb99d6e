// Package daemon runs the long-lived url-cleaner process: the navigation
// proxy, the management API and the rules file watcher.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Extra-Chill/url-cleaner/internal/api"
	"github.com/Extra-Chill/url-cleaner/internal/config"
	"github.com/Extra-Chill/url-cleaner/internal/history"
	"github.com/Extra-Chill/url-cleaner/internal/logging"
	"github.com/Extra-Chill/url-cleaner/internal/mode"
	"github.com/Extra-Chill/url-cleaner/internal/proxy"
	"github.com/Extra-Chill/url-cleaner/internal/rules"
	"github.com/Extra-Chill/url-cleaner/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Daemon holds the components shared by the proxy and the API.
type Daemon struct {
	Config  *config.Config
	Engine  *rules.Engine
	Store   *store.Store
	Modes   *mode.Manager
	History *history.Log
	Logs    *logging.Buffer
	Logger  *slog.Logger
	Version string

	ignore *proxy.IgnoreList
}

// New creates a Daemon from cfg. logs may be nil.
func New(cfg *config.Config, logger *slog.Logger, logs *logging.Buffer, version string) *Daemon {
	modes := mode.NewManager()
	cfg.ApplyClients(modes)

	return &Daemon{
		Config:  cfg,
		Engine:  rules.NewEngine(rules.WithLogger(logger)),
		Store:   store.New(cfg.Rules.File, logger),
		Modes:   modes,
		History: history.New(cfg.History.Limit),
		Logs:    logs,
		Logger:  logger,
		Version: version,
	}
}

// Prepare seeds the default rules on first start, loads the stored document
// and compiles the proxy ignore list.
func (d *Daemon) Prepare() error {
	ignore, err := proxy.NewIgnoreList(d.Config.Proxy.IgnoreHosts)
	if err != nil {
		return err
	}
	d.ignore = ignore

	if _, err := d.Store.EnsureDefault(rules.DefaultRules); err != nil {
		return fmt.Errorf("seed rules: %w", err)
	}
	text, err := d.Store.Load()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	d.Engine.LoadText(text)
	if d.Engine.Current().Empty() {
		d.Logger.Warn("rules document has no rules, URLs pass through unchanged", "path", d.Store.Path())
	}
	return nil
}

// Run prepares the daemon, listens on the configured addresses and blocks
// until ctx is done or a signal is received.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Prepare(); err != nil {
		return err
	}

	var proxyLn, apiLn net.Listener
	var err error
	if addr := d.Config.Proxy.Listen; addr != "" {
		if proxyLn, err = net.Listen("tcp", addr); err != nil {
			return fmt.Errorf("proxy listen: %w", err)
		}
	}
	if addr := d.Config.API.Listen; addr != "" {
		if apiLn, err = net.Listen("tcp", addr); err != nil {
			if proxyLn != nil {
				proxyLn.Close()
			}
			return fmt.Errorf("api listen: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return d.Serve(ctx, proxyLn, apiLn)
}

// Serve runs the proxy and API on the given listeners until ctx is done.
// A nil listener disables that server. Rules must already be loaded.
func (d *Daemon) Serve(ctx context.Context, proxyLn, apiLn net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	changes, unsubscribe := d.Store.Subscribe()
	defer unsubscribe()
	g.Go(func() error {
		d.follow(ctx, changes)
		return nil
	})

	if interval := d.Config.Rules.WatchInterval; interval > 0 {
		g.Go(func() error {
			return d.Store.Watch(ctx, interval)
		})
	}

	var proxyServer *http.Server
	if proxyLn != nil {
		inspector := proxy.NewInspector(d.Engine, d.Modes,
			proxy.WithHistory(d.History),
			proxy.WithIgnoreList(d.ignore),
			proxy.WithLogger(d.Logger),
		)
		proxyServer = &http.Server{
			Handler:     proxy.NewHandler(inspector),
			ReadTimeout: 30 * time.Second,
		}
		g.Go(func() error {
			d.Logger.Info("proxy listening", "addr", proxyLn.Addr().String())
			if err := proxyServer.Serve(proxyLn); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("proxy: %w", err)
			}
			return nil
		})
	}

	var apiServer *api.Server
	if apiLn != nil {
		apiServer = api.NewServer(api.ServerConfig{ManagementToken: d.Config.API.Token}, api.NewHandlers(api.Deps{
			Engine:  d.Engine,
			Store:   d.Store,
			Modes:   d.Modes,
			History: d.History,
			Logs:    d.Logs,
			Logger:  d.Logger,
			Version: d.Version,
		}))
		g.Go(func() error {
			if err := apiServer.Serve(apiLn); err != nil {
				return fmt.Errorf("api: %w", err)
			}
			return nil
		})
	}

	d.Logger.Info("daemon started",
		"mode", d.Modes.GlobalMode(),
		"rules", d.Store.Path(),
		"revision", d.Engine.Revision(),
		"ignored_hosts", d.ignore.Len(),
	)

	g.Go(func() error {
		<-ctx.Done()
		d.Logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var errs []error
		if proxyServer != nil {
			errs = append(errs, proxyServer.Shutdown(shutdownCtx))
		}
		if apiServer != nil {
			errs = append(errs, apiServer.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// follow applies stored document changes to the engine.
func (d *Daemon) follow(ctx context.Context, changes <-chan store.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			// The event may be stale by now; apply the file as it is.
			applied, err := d.Store.Apply(d.Engine.LoadText)
			if err != nil {
				d.Logger.Warn("apply rules from store", "revision", c.Revision, "error", err)
				continue
			}
			if applied {
				d.Logger.Debug("rules applied from store", "revision", d.Engine.Revision())
			}
		}
	}
}
