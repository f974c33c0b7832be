package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/comet/internal/database"
	"github.com/nao1215/comet/internal/report"
)

// defaultHistoryLimit is how many events history shows by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent toggles",
		Long: `History lists the toggles handled by the background controller, newest
first: connect and disconnect messages, ignored messages and the automatic
reconnect at startup. Toggles that failed to change the system settings
are marked as failed.

History reads the state database directly and works while the controller
is stopped.

Examples:
  comet history
  comet history --limit 100
  comet history --markdown > history.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of events to show (0 for all)")
	addFormatFlags(cmd)
	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("invalid limit %d: must be 0 or greater", limit)
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	w, err := report.NewWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DataDir, opts)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			_, err = w.WriteHistory(nil)
			return err
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	events, err := db.ListEvents(cmd.Context(), limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(events)
	return err
}
