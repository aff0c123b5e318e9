package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/output"
	"github.com/franz/fma-janitor/internal/store"
	"github.com/franz/fma-janitor/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure fmac can operate correctly.

This command checks:
- Raw input files (raw_*.csv) present and readable
- Output directory writable and not locked by another run
- Disk space availability
- Ledger database accessibility and integrity
- SQLite version

Use this command to troubleshoot issues before running fmac clean.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().String("input", "", "input directory to check (default: configured input)")
	doctorCmd.Flags().String("output", "", "output directory to check (default: configured output)")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== FMAC Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	results = append(results, checkSQLite())
	results = append(results, checkDatabase(GetConfigString("db", "fmac-state.db")))

	inputDir, _ := cmd.Flags().GetString("input")
	if inputDir == "" {
		inputDir = GetConfigString("input", "fma_metadata")
	}
	results = append(results, checkInputFiles(inputDir)...)

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = GetConfigString("output", "fma_metadata_cleaned")
	}
	results = append(results, checkOutputDirectory(outputDir))
	results = append(results, checkOutputLock(outputDir))
	results = append(results, checkDiskSpace(existingParent(outputDir), "output"))

	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before running fmac clean.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("All checks passed! System is ready for fmac clean.")
	}

	return nil
}

// checkSQLite verifies the embedded SQLite reports a version
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies the ledger database is usable
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Ledger",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Ledger",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Ledger",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Ledger",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Ledger",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Ledger",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	runs, _ := db.ListRuns(0)

	return checkResult{
		name:    "Ledger",
		message: fmt.Sprintf("%s (%s, %d runs)", dbPath, util.FormatBytes(info.Size()), len(runs)),
	}
}

// checkInputFiles verifies every raw table is present in the input directory
func checkInputFiles(dir string) []checkResult {
	info, err := os.Stat(dir)
	if err != nil {
		return []checkResult{{
			name:    "Input directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dir, err),
		}}
	}
	if !info.IsDir() {
		return []checkResult{{
			name:    "Input directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", dir),
		}}
	}

	results := make([]checkResult, 0, len(catalog.Entities))
	for _, e := range catalog.Entities {
		name := catalog.RawFileName(e)
		path := filepath.Join(dir, name)

		f, err := os.Open(path)
		if err != nil {
			results = append(results, checkResult{
				name:    name,
				error:   true,
				message: fmt.Sprintf("cannot read %s: %v", path, err),
			})
			continue
		}
		st, err := f.Stat()
		f.Close()
		if err != nil {
			results = append(results, checkResult{
				name:    name,
				error:   true,
				message: fmt.Sprintf("cannot stat %s: %v", path, err),
			})
			continue
		}
		if st.Size() == 0 {
			results = append(results, checkResult{
				name:    name,
				error:   true,
				message: fmt.Sprintf("%s is empty", path),
			})
			continue
		}

		results = append(results, checkResult{
			name:    name,
			message: util.FormatBytes(st.Size()),
		})
	}
	return results
}

// checkOutputDirectory verifies the output directory is writable or can be created
func checkOutputDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			parent := existingParent(path)
			if err := tryWrite(parent); err != nil {
				return checkResult{
					name:    "Output directory",
					error:   true,
					message: fmt.Sprintf("cannot create %s: %v", path, err),
				}
			}
			return checkResult{
				name:    "Output directory",
				message: fmt.Sprintf("%s (will be created)", path),
			}
		}
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	if err := tryWrite(path); err != nil {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}

	return checkResult{
		name:    "Output directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkOutputLock reports whether another clean run holds the output lock
func checkOutputLock(dir string) checkResult {
	if _, err := os.Stat(filepath.Dir(output.LockPath(dir))); err != nil {
		return checkResult{
			name:    "Output lock",
			message: "not held",
		}
	}

	lock, err := output.AcquireLock(dir)
	if err != nil {
		if errors.Is(err, util.ErrLocked) {
			return checkResult{
				name:    "Output lock",
				error:   true,
				message: fmt.Sprintf("%s is held by another run", output.LockPath(dir)),
			}
		}
		return checkResult{
			name:    "Output lock",
			warning: true,
			message: fmt.Sprintf("cannot check %s: %v", output.LockPath(dir), err),
		}
	}
	lock.Release()

	return checkResult{
		name:    "Output lock",
		message: "not held",
	}
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)

	// Warn below 1GB
	warning := false
	warningMsg := ""
	if availBytes < 1<<30 {
		warning = true
		warningMsg = " (low space!)"
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		warning: warning,
		message: fmt.Sprintf("%s available%s", util.FormatBytes(int64(availBytes)), warningMsg),
	}
}

func tryWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".fmac_write_test.*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// existingParent walks up from path to the nearest directory that exists
func existingParent(path string) string {
	p := filepath.Clean(path)
	for {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
