package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/fma-janitor/internal/store"
	"github.com/franz/fma-janitor/internal/util"
)

// WriteMarkdownReport writes a recorded run as Markdown
func WriteMarkdownReport(run *store.Run, eventLogPath, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(Markdown(run, eventLogPath)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// Markdown renders a recorded run as a Markdown document
func Markdown(run *store.Run, eventLogPath string) string {
	var md strings.Builder

	md.WriteString("# FMA Metadata Cleaner - Run Report\n\n")
	md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", run.ID))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", run.StartedAt.Local().Format("2006-01-02 15:04:05")))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", run.Duration().Round(time.Millisecond)))
	md.WriteString(fmt.Sprintf("**State:** %s\n\n", run.State))
	md.WriteString(fmt.Sprintf("**Input:** `%s`\n\n", run.InputDir))
	md.WriteString(fmt.Sprintf("**Output:** `%s`\n\n", run.OutputDir))
	if eventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", eventLogPath))
	}
	if run.Error != "" {
		md.WriteString(fmt.Sprintf("> **Error:** %s\n\n", run.Error))
	}

	md.WriteString("---\n\n")

	if len(run.Entities) > 0 {
		md.WriteString("## 🧹 Cleaning\n\n")
		md.WriteString("| Entity | Raw | Missing Id | Invalid Key | Duplicates | Rejected | Repaired | Clean |\n")
		md.WriteString("|--------|----:|-----------:|------------:|-----------:|---------:|---------:|------:|\n")
		for _, e := range run.Entities {
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				e.Entity, util.FormatCount(e.InputRows), util.FormatCount(e.MissingIdentity),
				util.FormatCount(e.InvalidKey), util.FormatCount(e.Duplicates),
				util.FormatCount(e.Rejected), util.FormatCount(e.Repaired), util.FormatCount(e.OutputRows)))
		}
		md.WriteString("\n")

		md.WriteString("## 💾 Saved Files\n\n")
		md.WriteString("| File | Rows | Size | Status |\n")
		md.WriteString("|------|-----:|-----:|--------|\n")
		for _, e := range run.Entities {
			if e.OutputPath == "" && e.WriteError == "" {
				continue
			}
			status := "ok"
			if e.WriteError != "" {
				status = "failed: " + e.WriteError
			}
			md.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n",
				truncatePath(e.OutputPath, 60), util.FormatCount(e.OutputRows),
				util.FormatBytes(e.OutputBytes), status))
		}
		md.WriteString("\n")
	}

	coverage := findingsOfKind(run.Findings, store.FindingCoverage)
	if len(coverage) > 0 {
		md.WriteString("## 📊 Coverage Analysis\n\n")
		md.WriteString("| Candidate | Column | Rows With Data | Coverage | Unique Values | Recommendation |\n")
		md.WriteString("|-----------|--------|---------------:|---------:|--------------:|----------------|\n")
		for _, f := range coverage {
			md.WriteString(fmt.Sprintf("| %s | `%s` | %s / %s | %s | %s | %s |\n",
				f.Label, f.Subject, util.FormatCount(int(f.Count)), util.FormatCount(int(f.Total)),
				util.FormatPercent(f.Percent), util.FormatCount(int(f.Distinct)), coverageVerdict(f)))
		}
		md.WriteString("\n")
	}

	for _, f := range findingsOfKind(run.Findings, store.FindingGenreLinks) {
		md.WriteString("## 🔗 Track-Genre Links\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Valid Links | %s |\n", util.FormatCount(int(f.Count))))
		md.WriteString(fmt.Sprintf("| Genre Records | %s |\n", util.FormatCount(int(f.Total))))
		md.WriteString(fmt.Sprintf("| Malformed Cells | %s |\n", util.FormatCount(int(f.Skipped))))
		md.WriteString("\n")
		md.WriteString(linkVerdict(f) + "\n\n")
	}

	structural := append(findingsOfKind(run.Findings, store.FindingGenreCycles),
		findingsOfKind(run.Findings, store.FindingUnmatchedFeatures)...)
	if len(structural) > 0 {
		md.WriteString("## ⚠️ Structural Findings\n\n")
		md.WriteString("| Finding | Count | Detail |\n")
		md.WriteString("|---------|------:|--------|\n")
		for _, f := range structural {
			md.WriteString(fmt.Sprintf("| %s | %s | %s |\n", f.Label, util.FormatCount(int(f.Count)), f.Detail))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by fmac - FMA metadata cleaner*\n")

	return md.String()
}

func findingsOfKind(findings []store.Finding, kind string) []store.Finding {
	var out []store.Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func coverageVerdict(f store.Finding) string {
	if f.Recommended {
		return "✓ Good coverage - worth creating a table"
	}
	return "✗ Very low coverage - table would be mostly empty"
}

func linkVerdict(f store.Finding) string {
	if f.Recommended {
		return "✓ TrackGenres linking table is essential for this relationship"
	}
	return "✗ No track references a known genre"
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
