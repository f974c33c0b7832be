package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/bridge"
	"github.com/nao1215/comet/internal/config"
	"github.com/nao1215/comet/internal/tor"
)

// NewBridgeCmd creates the bridge command.
func NewBridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Run only the HTTP to SOCKS5 bridge",
		Long: `Bridge runs the local HTTP proxy that forwards to a Tor SOCKS5 port,
without the background controller.

Plain HTTP requests and CONNECT tunnels are forwarded through the SOCKS5
port. Hostnames are resolved by Tor, not locally.

Examples:
  # Forward 127.0.0.1:8080 to the system Tor
  comet bridge

  # Forward to Tor Browser's Tor and wait until it is up
  comet bridge --socks 127.0.0.1:9150 --wait`,
		Args: cobra.NoArgs,
		RunE: runBridgeCmd,
	}

	addBridgeFlags(cmd)
	return cmd
}

// addBridgeFlags registers the flags shared by bridge and serve.
func addBridgeFlags(cmd *cobra.Command) {
	cmd.Flags().String("listen", config.DefaultBridgeListenAddress,
		"Address the bridge listens on")
	cmd.Flags().StringP("socks", "s", config.DefaultSocksAddress,
		"Tor SOCKS5 address to forward to")
	cmd.Flags().BoolP("wait", "w", false,
		"Wait until the SOCKS5 port is reachable before listening")
	cmd.Flags().BoolP("embedded-tor", "e", false,
		"Start a Tor daemon managed by comet and forward to it")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
}

// applyBridgeFlags copies explicitly set bridge flags into cfg.
func applyBridgeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("listen") {
		if cfg.BridgeListenAddress, err = flags.GetString("listen"); err != nil {
			return err
		}
	}
	if flags.Changed("socks") {
		if cfg.SocksAddress, err = flags.GetString("socks"); err != nil {
			return err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return err
		}
	}
	if cfg.WaitForSocks, err = flags.GetBool("wait"); err != nil {
		return err
	}
	if cfg.UseEmbeddedTor, err = flags.GetBool("embedded-tor"); err != nil {
		return err
	}
	return nil
}

// runBridgeCmd executes the bridge command.
func runBridgeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
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

	if err := runBridge(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runBridge serves the bridge until ctx ends.
func runBridge(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		client *tor.Client
		err    error
	)
	if cfg.UseEmbeddedTor {
		var embedded *tor.EmbeddedTor
		if embedded, err = startEmbeddedTor(ctx, cfg, logger); err != nil {
			return err
		}
		defer func() {
			logger.Info("stopping embedded Tor daemon")
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
		client, err = embedded.NewClient(cfg.RequestTimeout)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 client: %w", err)
		}
	} else {
		client, err = tor.NewClient(cfg.SocksAddress, cfg.RequestTimeout)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 client: %w", err)
		}
	}
	socksAddr := client.SocksAddress()

	if cfg.WaitForSocks {
		logger.Info("waiting for SOCKS5 port", "address", socksAddr)
		err = tor.WaitForSocks(ctx, client, config.DefaultSocksPollInterval, func(elapsed time.Duration, status tor.SocksStatus) {
			logger.Info("SOCKS5 port not ready", "address", socksAddr, "status", status.String(), "elapsed", elapsed.Round(time.Second))
		})
		if err != nil {
			return err
		}
	} else if status := client.CheckConnection(ctx); status != tor.SocksReady {
		// Requests fail until Tor comes up, but the bridge can listen already.
		logger.Warn("SOCKS5 port is not ready", "address", socksAddr, "status", status.String())
	}

	b, err := bridge.New(cfg.BridgeListenAddress, client,
		bridge.WithLogger(logger),
		bridge.WithResponseHeaderTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- b.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := b.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop bridge: %w", err)
	}
	return <-errCh
}

// startEmbeddedTor starts a tornago-managed Tor daemon.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.EmbeddedTor, error) {
	logger.Info("starting embedded Tor daemon (this may take a few minutes)")
	embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon ready",
		"socks", embedded.SocksAddr(),
		"control", embedded.ControlAddr(),
	)
	return embedded, nil
}
