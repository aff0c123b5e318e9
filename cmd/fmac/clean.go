package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/franz/fma-janitor/internal/analyze"
	"github.com/franz/fma-janitor/internal/load"
	"github.com/franz/fma-janitor/internal/output"
	"github.com/franz/fma-janitor/internal/pipeline"
	"github.com/franz/fma-janitor/internal/report"
	"github.com/franz/fma-janitor/internal/store"
	"github.com/franz/fma-janitor/internal/util"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw FMA metadata tables and analyze coverage",
	Long: `Load the five raw FMA tables, clean them and write the results.

Stages:
1. Load: read raw_{genres,artists,albums,tracks,echonest}.csv from --input
2. Clean independent tables: genres (orphan parents become top-level), artists
3. Clean dependent tables: albums, tracks (unknown references are dropped), echonest
4. Save: write clean_*.csv to --output, one file at a time
5. Analyze: measure multi-valued fields and track-genre links

A missing input file or column aborts the run before anything is written.
The run is recorded in the ledger database unless --no-ledger is set.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().String("input", "fma_metadata", "directory containing the raw CSV files")
	cleanCmd.Flags().String("output", "fma_metadata_cleaned", "directory for the cleaned CSV files")
	cleanCmd.Flags().Float64("threshold", analyze.DefaultThreshold, "coverage percent above which a field is worth its own table")
	cleanCmd.Flags().Bool("no-ledger", false, "do not record the run in the ledger database")

	viper.BindPFlag("input", cleanCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", cleanCmd.Flags().Lookup("output"))
	viper.BindPFlag("threshold", cleanCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("no-ledger", cleanCmd.Flags().Lookup("no-ledger"))
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inputDir := GetConfigString("input", "fma_metadata")
	outputDir := GetConfigString("output", "fma_metadata_cleaned")
	threshold := GetConfigFloat("threshold", analyze.DefaultThreshold)
	artifacts := GetConfigString("artifacts", "artifacts")
	dbPath := GetConfigString("db", "fmac-state.db")

	logLevel := report.LevelInfo
	if GetConfigBool("quiet") {
		logLevel = report.LevelWarning
	} else if GetConfigBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger(artifacts, logLevel)
	if err != nil {
		util.WarnLog("Event log disabled: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	runID := uuid.New().String()
	logger.SetRunID(runID)
	util.DebugLog("Run %s, event log: %s", runID, logger.Path())

	p := pipeline.New(&pipeline.Config{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Threshold:  threshold,
		Progress:   util.StderrIsTerminal() && !util.IsQuiet(),
		Logger:     logger,
		LockOutput: true,
	})

	res, runErr := p.Run(ctx)
	run := res.LedgerRun(runID)

	if !GetConfigBool("no-ledger") {
		recordRun(dbPath, run, logger)
	}

	if runErr != nil {
		if errors.Is(runErr, util.ErrLocked) {
			return fmt.Errorf("another clean run is writing to %s (lock: %s)", outputDir, output.LockPath(outputDir))
		}
		var missing *load.MissingSourceError
		if errors.As(runErr, &missing) {
			util.ErrorLog("Cannot load %s", missing.Path)
			util.ErrorLog("Make sure all raw_*.csv files are in %s/", inputDir)
		}
		return fmt.Errorf("clean failed: %w", runErr)
	}

	fmt.Fprint(cmd.OutOrStdout(), report.RenderRun(run))

	if n := res.WriteFailures(); n > 0 {
		util.WarnLog("%d of %d tables could not be saved", n, len(res.Writes))
	}
	util.SuccessLog("CLEANING COMPLETE")
	util.InfoLog("Cleaned files saved to: %s/", outputDir)
	return nil
}

// recordRun stores the run in the ledger. Failures only warn and go to the
// event log; the cleaned output is already on disk.
func recordRun(dbPath string, run *store.Run, logger *report.EventLogger) error {
	db, err := store.Open(dbPath)
	if err != nil {
		util.WarnLog("Ledger unavailable: %v", err)
		logger.LogError("ledger", dbPath, err)
		return err
	}
	defer db.Close()

	if err := db.RecordRun(run); err != nil {
		util.WarnLog("Failed to record run %s: %v", run.ID, err)
		logger.LogError("ledger", dbPath, err)
		return err
	}
	util.DebugLog("Recorded run %s in %s", run.ID, dbPath)
	return nil
}
