package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/config"
	"github.com/nao1215/comet/internal/log"
	"github.com/nao1215/comet/internal/report"
)

// loadConfig builds the configuration from defaults, the config file and the
// global flags, in that order, and validates it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if flags.Changed("control") {
		if cfg.ControlAddress, err = flags.GetString("control"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-file") {
		if cfg.LogFile, err = flags.GetString("log-file"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("data-dir") {
		if cfg.DataDir, err = flags.GetString("data-dir"); err != nil {
			return nil, err
		}
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newLogger creates the command logger on stderr, copied to cfg.LogFile when
// set. Commands that run in the foreground pass slog.LevelWarn, long-running
// ones slog.LevelInfo. The returned function closes the log file.
func newLogger(cmd *cobra.Command, cfg *config.Config, fallback slog.Level) (*slog.Logger, func(), error) {
	var (
		w       io.Writer = cmd.ErrOrStderr()
		closeFn           = func() {}
	)
	if cfg.LogFile != "" {
		f, err := log.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(w, f)
		closeFn = func() { _ = f.Close() }
	}
	logger := log.NewLogger(w, log.Options{
		Level: log.LevelFor(cfg.Verbose, fallback),
		JSON:  cfg.LogJSON,
	})
	return logger, closeFn, nil
}

// addFormatFlags registers --json and --markdown.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// outputFormat reads the flags registered by addFormatFlags.
func outputFormat(cmd *cobra.Command) (report.Format, error) {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return "", err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return "", err
	}
	switch {
	case asJSON:
		return report.FormatJSON, nil
	case asMarkdown:
		return report.FormatMarkdown, nil
	default:
		return report.FormatText, nil
	}
}
