package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/messaging"
	"github.com/nao1215/comet/internal/model"
	"github.com/nao1215/comet/internal/popup"
	"github.com/nao1215/comet/internal/report"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether traffic goes through the proxy",
		Long: `Status reads the persisted on/off state from the background controller
and prints "Connected" or "Disconnected", followed by the applied proxy
configuration when connected.

Examples:
  comet status
  comet status --json
  comet status --markdown > status.md`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}
	addFormatFlags(cmd)
	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	w, err := report.NewWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cmd, cfg, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	client := messaging.NewClient(cfg.ControlAddress, cfg.RequestTimeout)
	view := &popup.LabelView{}
	p := popup.New(client, client, view, popup.WithLogger(logger))
	if err := p.Open(cmd.Context()); err != nil {
		return fmt.Errorf("failed to read status (is \"comet serve\" running?): %w", err)
	}

	enabled := view.Label() == model.LabelConnected
	_, err = w.WriteStatus(model.NewStatusReport(enabled, cfg.ControlAddress, time.Now()))
	return err
}
