// Package main provides the entry point for the comet CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/config"
)

// NewRootCmd creates the root command for comet.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comet",
		Short: "Toggle routing desktop traffic through a local Tor proxy",
		Long: `comet switches the system proxy settings between direct connections and
a local HTTP proxy on 127.0.0.1:8080 that forwards to Tor.

Run "comet serve" once to start the background controller. It owns the
persisted on/off state, reapplies the proxy after a restart and can run the
HTTP to SOCKS5 bridge itself (--bridge). "comet connect", "comet disconnect"
and "comet status" talk to it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("log-file", "",
		"Also append logs to this file")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .comet in current or home directory)")
	cmd.PersistentFlags().String("control", config.DefaultControlAddress,
		"Address of the background controller")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory holding the state database (default: XDG data directory)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConnectCmd())
	cmd.AddCommand(NewDisconnectCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewBridgeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
