package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/config"
)

//go:embed templates/comet.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .comet configuration file",
		Long: `Init writes a commented .comet configuration file to the current directory.

The file lets you change where the controller, the bridge and the Tor SOCKS
port listen, where state is stored and the timeouts. The proxy address the
toggle applies (http://127.0.0.1:8080, bypassing local addresses) is fixed.

Examples:
  # Create .comet in current directory
  comet init

  # Create config file at a specific path
  comet init -o ~/.config/comet/config.yaml

  # Force overwrite existing file
  comet init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/comet.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to change:")
	fmt.Fprintln(out, "  - the controller and bridge listen addresses")
	fmt.Fprintln(out, "  - the Tor SOCKS5 address the bridge forwards to")
	fmt.Fprintln(out, "  - the state directory and timeouts")
	return nil
}
