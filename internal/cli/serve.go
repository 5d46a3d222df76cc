package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/precario/internal/auth"
	"github.com/roach88/precario/internal/config"
	"github.com/roach88/precario/internal/importer"
	"github.com/roach88/precario/internal/label"
	"github.com/roach88/precario/internal/logging"
	"github.com/roach88/precario/internal/metrics"
	"github.com/roach88/precario/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the back office web server",
		Long: `Run the back office: label and queue pages, the print sheet, the JSON API,
the display feed for the TV app and /metrics.

When import.inbox_dir is set, catalog files dropped there are imported and
moved to processed/ or failed/. SIGINT or SIGTERM shut everything down
gracefully.

Sign-in needs at least one auth.users entry; set auth.disabled: true to run
without it on a trusted network.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return setupError(f, "load configuration", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if err := cfg.RequireUsers(); err != nil {
				return setupError(f, "check users", err)
			}

			logger, err := logging.New(logging.Options{
				Level:   cfg.Logging.Level,
				Format:  cfg.Logging.Format,
				Verbose: rootOpts.Verbose,
			})
			if err != nil {
				return setupError(f, "initialize logger", err)
			}

			a, err := newApp(cfg, logger, metrics.New(), f)
			if err != nil {
				_ = logger.Sync()
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, a, func(bound string) {
				if f.Format != "json" {
					fmt.Fprintf(f.Writer, "Listening on http://%s\n", bound)
				}
			}); err != nil {
				return f.Fail("serve", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

// serve runs the HTTP server and, when configured, the import watcher until
// ctx is cancelled or one of them fails.
func serve(ctx context.Context, a *app, ready func(addr string)) error {
	cfg := a.cfg

	srv, err := newServer(a)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Import.InboxDir != "" {
		im, err := a.importer()
		if err != nil {
			return err
		}
		watcher, err := importer.NewWatcher(im, cfg.Import.InboxDir, cfg.GetImportDebounce(), a.logger.Named("inbox"))
		if err != nil {
			return err
		}
		if err := watcher.Start(gctx); err != nil {
			watcher.Stop()
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			watcher.Stop()
			return nil
		})
	}

	g.Go(func() error {
		return srv.Serve(gctx, web.ServerConfig{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.GetReadTimeout(),
			WriteTimeout:    cfg.GetWriteTimeout(),
			ShutdownTimeout: cfg.GetShutdownTimeout(),
		}, ready)
	})

	err = g.Wait()
	a.logger.Info("stopped")
	return err
}

// newServer builds the web server from config.
func newServer(a *app) (*web.Server, error) {
	cfg := a.cfg

	renderer, err := label.NewRenderer(&label.Assets{Dir: cfg.Labels.AssetsDir, URLPrefix: "/assets"}, a.metrics)
	if err != nil {
		return nil, err
	}

	opts := web.Options{
		Service:      a.svc,
		Renderer:     renderer,
		Auth:         newAuthenticator(cfg, a.logger),
		SecureCookie: cfg.Auth.CookieSecure,
		DisplayToken: cfg.Display.Token,
		AssetsDir:    cfg.Labels.AssetsDir,
		Metrics:      a.metrics,
		Logger:       a.logger,
	}
	if cfg.Labels.PDF.Enabled {
		pdfRenderer, err := label.NewRenderer(&label.Assets{Dir: cfg.Labels.AssetsDir, Inline: true}, a.metrics)
		if err != nil {
			return nil, err
		}
		opts.PDFRenderer = pdfRenderer
		opts.Printer = newPrinter(cfg, a.logger.Named("pdf"))
	}

	return web.New(opts)
}

func newAuthenticator(cfg *config.Config, logger *zap.Logger) *auth.Authenticator {
	users := make([]auth.User, 0, len(cfg.Auth.Users))
	for _, u := range cfg.Auth.Users {
		users = append(users, auth.User{Email: u.Email, PasswordHash: u.PasswordHash})
	}
	opts := []auth.Option{auth.WithLogger(logger.Named("auth"))}
	if cfg.Auth.Disabled {
		opts = append(opts, auth.Disabled())
		logger.Warn("sign-in disabled: every request is treated as signed in")
	}
	return auth.NewAuthenticator(users, cfg.GetSessionTTL(), opts...)
}
