package main

import (
	"fmt"

	"github.com/franz/fma-janitor/internal/report"
	"github.com/franz/fma-janitor/internal/store"
	"github.com/franz/fma-janitor/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs recorded in the ledger database",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int("limit", 10, "maximum number of runs to list")
	historyCmd.Flags().Bool("all", false, "list every recorded run")

	viper.BindPFlag("history.limit", historyCmd.Flags().Lookup("limit"))
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := store.Open(GetConfigString("db", "fmac-state.db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	listAll, _ := cmd.Flags().GetBool("all")
	runs, err := db.ListRuns(historyLimit(listAll))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		util.InfoLog("No runs recorded in %s", GetConfigString("db", "fmac-state.db"))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), report.RenderHistory(runs))
	return nil
}

// historyLimit resolves how many runs to list; 0 means all of them
func historyLimit(listAll bool) int {
	if listAll {
		return 0
	}
	return GetConfigInt("history.limit", 10)
}
