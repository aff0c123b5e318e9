package main

import (
	"fmt"
	"path/filepath"

	"github.com/franz/fma-janitor/internal/report"
	"github.com/franz/fma-janitor/internal/store"
	"github.com/franz/fma-janitor/internal/util"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a Markdown summary of a recorded run",
	Long: `Generate a Markdown summary of a run recorded in the ledger database.

The report includes:
- Per-table cleaning counts (dropped, repaired, kept)
- Saved files and write failures
- Coverage analysis of multi-valued fields
- Track-genre link validity
- Genre cycles and unmatched feature rows

Without --run the most recent run is used. A unique prefix of a run id is
accepted. The report is saved to <out>/fmac-report-<id>.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("run", "", "run id or unique prefix (default: latest run)")
	reportCmd.Flags().String("out", "", "output directory for the report (default: <artifacts>/reports)")
	reportCmd.Flags().String("event-log", "", "path to the run's event log (optional)")
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath := GetConfigString("db", "fmac-state.db")

	util.InfoLog("=== Generating Summary Report ===")
	util.InfoLog("Database: %s", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, _ := cmd.Flags().GetString("run")
	var run *store.Run
	if runID == "" {
		run, err = db.LatestRun()
	} else {
		run, err = db.GetRun(runID)
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		outputDir = filepath.Join(GetConfigString("artifacts", "artifacts"), "reports")
	}
	outputPath := filepath.Join(outputDir, reportFileName(run.ID))

	eventLogPath, _ := cmd.Flags().GetString("event-log")

	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(run, eventLogPath, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("  Run: %s (%s)", run.ID, run.State)
	util.InfoLog("  Tables: %d", len(run.Entities))
	util.InfoLog("  Findings: %d", len(run.Findings))
	return nil
}

func reportFileName(runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("fmac-report-%s.md", short)
}
