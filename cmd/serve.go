package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nefumc/pgrds/allowlist"
	"github.com/nefumc/pgrds/catalog"
	"github.com/nefumc/pgrds/control"
	"github.com/nefumc/pgrds/health"
	"github.com/nefumc/pgrds/resolve"
	"github.com/nefumc/pgrds/searchpath"
	"github.com/nefumc/pgrds/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extension property resolution over HTTP",
	Long: `Starts an HTTP server exposing the resolution API, the extension listing,
health checks, and Prometheus metrics. With a database URL the search path and
catalog come from a connection pool; without one, resolution runs offline
against the configured search_path.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides listen_addr)")
	mustBindPFlag("listen_addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reader := control.NewReader(cfg.ShareDir, logger)
	allowed := allowlist.Parse(cfg.AllowedExtensions)
	checker := health.NewChecker()
	checker.Register("share_dir", health.ShareDirProbe(cfg.ShareDir))

	var (
		path searchpath.Source = searchpath.Static(cfg.SearchPath)
		cat  catalog.VersionSource
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}
		defer pool.Close()

		path = searchpath.NewPGSearchPath(pool, logger)
		cat = catalog.NewPGCatalog(pool, logger)
		checker.Register("catalog", health.CatalogProbe(pool))
	}

	resolver := resolve.New(reader, path, cat, logger)
	api := server.New(resolver, reader, allowed, logger)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", checker.ServeHTTP)
	r.Mount("/", api.Handler())

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ln, lnErr := net.Listen("tcp", cfg.ListenAddr)
		if lnErr != nil {
			return fmt.Errorf("http listen: %w", lnErr)
		}
		logger.Info("HTTP server started",
			"addr", cfg.ListenAddr,
			"share_dir", cfg.ShareDir,
			"allowlist_size", len(allowed.Names()))
		if err := httpServer.Serve(ln); err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
