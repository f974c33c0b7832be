package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/comet/internal/config"
	"github.com/nao1215/comet/internal/controller"
	"github.com/nao1215/comet/internal/database"
	"github.com/nao1215/comet/internal/messaging"
	"github.com/nao1215/comet/internal/sysproxy"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background controller",
		Long: `Serve runs the background controller until interrupted.

On startup it reads the persisted on/off state. If the proxy was left on,
the proxy configuration is applied again without any further action.
It then accepts connect and disconnect messages on the control address.

With --bridge it also runs the HTTP to SOCKS5 bridge on 127.0.0.1:8080,
so the proxy the toggle points at is actually there.

Examples:
  # Controller only; run your own proxy on 127.0.0.1:8080
  comet serve

  # Controller and bridge to the system Tor
  comet serve --bridge

  # Controller and bridge to a Tor daemon started by comet
  comet serve --bridge --embedded-tor

  # Try it without touching the system proxy settings
  comet serve --dry-run`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().Bool("dry-run", false,
		"Keep the proxy configuration in memory instead of changing system settings")
	addBridgeFlags(cmd)
	cmd.Flags().BoolP("bridge", "b", false,
		"Also run the HTTP to SOCKS5 bridge")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return err
	}
	if cfg.RunBridge, err = cmd.Flags().GetBool("bridge"); err != nil {
		return err
	}
	if err := applyBridgeFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closeLog, err := newLogger(cmd, cfg, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger)
}

// proxyApplier returns the applier for cfg.
func proxyApplier(cfg *config.Config, logger *slog.Logger) controller.ProxyApplier {
	if cfg.DryRun {
		logger.Info("dry run: system proxy settings will not be changed")
		return sysproxy.NewMemory()
	}
	sys := sysproxy.NewSystem()
	logger.Debug("using system proxy backend", "backend", sys.Name())
	return sys
}

// runServe runs the controller, and the bridge when requested, until ctx ends
// or one of them fails.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.DataDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Debug("database opened", "path", db.Path())

	ctrl := controller.New(proxyApplier(cfg, logger), db,
		controller.WithLogger(logger),
		controller.WithEventRecorder(db),
	)

	// A failed restore is logged and recorded; the controller still serves
	// so the user can toggle again.
	if err := ctrl.Startup(ctx); err != nil {
		logger.Warn("startup recovery failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	srv := messaging.NewServer(cfg.ControlAddress, ctrl, logger)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.RunBridge {
		g.Go(func() error {
			return runBridge(gctx, cfg, logger)
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("background controller stopped")
	return nil
}
