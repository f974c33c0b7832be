package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/messaging"
	"github.com/nao1215/comet/internal/model"
	"github.com/nao1215/comet/internal/popup"
)

// NewConnectCmd creates the connect command.
func NewConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Route desktop traffic through the local proxy",
		Long: `Connect asks the background controller to apply the proxy configuration
(http://127.0.0.1:8080, local addresses bypassed) and prints the resulting
status.

The controller must be running ("comet serve").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToggle(cmd, model.ActionConnect)
		},
	}
}

// NewDisconnectCmd creates the disconnect command.
func NewDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Connect directly again",
		Long: `Disconnect asks the background controller to clear the proxy
configuration and prints the resulting status.

The controller must be running ("comet serve").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToggle(cmd, model.ActionDisconnect)
		},
	}
}

// runToggle clicks the connect or disconnect button of a popup bound to the
// controller. The label is printed only when the controller answered.
func runToggle(cmd *cobra.Command, action model.Action) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cmd, cfg, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	client := messaging.NewClient(cfg.ControlAddress, cfg.RequestTimeout)
	p := popup.New(client, client, popup.NewWriterView(cmd.OutOrStdout()), popup.WithLogger(logger))

	if action == model.ActionConnect {
		err = p.OnConnectClick(cmd.Context())
	} else {
		err = p.OnDisconnectClick(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("%s failed (is \"comet serve\" running?): %w", action, err)
	}
	return nil
}
