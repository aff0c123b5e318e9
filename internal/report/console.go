package report

import (
	"fmt"
	"strings"

	"github.com/franz/fma-janitor/internal/store"
	"github.com/franz/fma-janitor/internal/util"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// RenderRun renders the stdout report of a run
func RenderRun(run *store.Run) string {
	var b strings.Builder

	b.WriteString(banner("CLEANING DATA"))
	rows := make([][]string, 0, len(run.Entities))
	for _, e := range run.Entities {
		rows = append(rows, []string{
			e.Entity,
			util.FormatCount(e.InputRows),
			util.FormatCount(e.MissingIdentity + e.InvalidKey + e.Duplicates),
			util.FormatCount(e.Rejected),
			util.FormatCount(e.Repaired),
			util.FormatCount(e.OutputRows),
			saveStatus(e),
		})
	}
	b.WriteString(renderTable(
		[]string{"Entity", "Raw", "Dropped", "Rejected", "Repaired", "Clean", "Saved"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	b.WriteString("\n")

	coverage := findingsOfKind(run.Findings, store.FindingCoverage)
	links := findingsOfKind(run.Findings, store.FindingGenreLinks)
	if len(coverage) == 0 && len(links) == 0 {
		return b.String()
	}

	b.WriteString(banner("DATA ANALYSIS - Checking coverage for potential tables"))
	rows = rows[:0]
	for _, f := range coverage {
		rows = append(rows, []string{
			f.Label,
			fmt.Sprintf("%s / %s", util.FormatCount(int(f.Count)), util.FormatCount(int(f.Total))),
			util.FormatPercent(f.Percent),
			util.FormatCount(int(f.Distinct)),
			coverageVerdict(f),
		})
	}
	b.WriteString(renderTable(
		[]string{"Candidate", "Rows With Data", "Coverage", "Unique Values", "Recommendation"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	b.WriteString("\n")

	for _, f := range links {
		b.WriteString("\nTrack-Genre Links:\n")
		b.WriteString(fmt.Sprintf("  Valid links: %s\n", util.FormatCount(int(f.Count))))
		if f.Skipped > 0 {
			b.WriteString(fmt.Sprintf("  Malformed cells skipped: %s\n", util.FormatCount(int(f.Skipped))))
		}
		b.WriteString("  " + linkVerdict(f) + "\n")
	}

	for _, kind := range []string{store.FindingGenreCycles, store.FindingUnmatchedFeatures} {
		for _, f := range findingsOfKind(run.Findings, kind) {
			if f.Count > 0 {
				b.WriteString(fmt.Sprintf("\n%s: %s\n", f.Label, util.FormatCount(int(f.Count))))
			}
		}
	}

	return b.String()
}

// RenderHistory renders a listing of recorded runs
func RenderHistory(runs []store.RunSummary) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		failures := ""
		if r.WriteFailures > 0 {
			failures = fmt.Sprintf("%d failed", r.WriteFailures)
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.State,
			util.FormatCount(r.InputRows),
			util.FormatCount(r.OutputRows),
			failures,
			r.OutputDir,
		})
	}
	return renderTable(
		[]string{"Run", "Started", "State", "Raw", "Clean", "Writes", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func saveStatus(e store.RunEntity) string {
	switch {
	case e.WriteError != "":
		return "FAILED"
	case e.OutputPath != "":
		return util.FormatBytes(e.OutputBytes)
	default:
		return "-"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func banner(title string) string {
	line := strings.Repeat("=", 80)
	return fmt.Sprintf("\n%s\n%s\n%s\n", line, title, line)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
