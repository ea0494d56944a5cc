package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/thinhttp/packages/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded requests",
	Long: `Show requests recorded with --history (or the "history" config key),
newest first.

Examples:
  thinhttp get https://httpbin.org/get --history requests.db
  thinhttp history --history requests.db -n 20
  thinhttp history --history requests.db --clear`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

var (
	historyLimitFlag int
	historyClearFlag bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 50, "Number of entries to show")
	historyCmd.Flags().BoolVar(&historyClearFlag, "clear", false, "Delete every recorded request")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cfg.History == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("no history file: pass --history or set \"history\" in the config file"))
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if historyClearFlag {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	}

	entries, err := store.List(ctx, historyLimitFlag)
	if err != nil {
		return err
	}
	newConsole(cmd, cfg).FormatHistory(entries)
	return nil
}
