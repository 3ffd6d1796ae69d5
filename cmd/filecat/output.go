package main

import (
	"fmt"
	"io"
	"strings"

	"filecat/internal/organize"
	"filecat/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgMagenta, color.Bold)
	dimColor     = color.New(color.Faint)
)

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	warningColor.Fprintf(w, "! "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, "✗ "+format+"\n", args...)
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, format string, args ...interface{}) {
	infoColor.Fprintf(w, format+"\n", args...)
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, title string) {
	headerColor.Fprintln(w, title)
	dimColor.Fprintln(w, strings.Repeat("─", lipgloss.Width(title)))
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func printRecords(w io.Writer, records []types.InventoryRecord) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	fmt.Fprintln(w, renderTable(types.InventoryHeaders, rows))
}

func printTally(w io.Writer, tally []types.TypeCount) {
	rows := make([][]string, 0, len(tally))
	for _, tc := range tally {
		rows = append(rows, []string{tc.FileType, humanize.Comma(int64(tc.Count))})
	}
	fmt.Fprintln(w, renderTable([]string{"File Type", "Files"}, rows))
}

// printResult writes the outcome of a pipeline run
func printResult(w io.Writer, result *organize.Result) {
	if result == nil {
		return
	}
	PrintHeader(w, fmt.Sprintf("%s files inventoried in %s", humanize.Comma(int64(len(result.Records))), result.Root))
	printTally(w, result.Tally)
	if result.ExportPath != "" {
		PrintSuccess(w, "Inventory: %s", result.ExportPath)
	}
	if result.NarrativePath != "" {
		PrintSuccess(w, "Narrative: %s", result.NarrativePath)
	}
	if result.HTMLPath != "" {
		PrintSuccess(w, "HTML:      %s", result.HTMLPath)
	}
	if result.Narrative != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, result.Narrative)
	}
}
