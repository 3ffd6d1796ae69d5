package views

import (
	"fmt"
	"strings"

	serr "filecat/internal/errors"
	"filecat/internal/organize"
	"filecat/internal/tui/common"
	"filecat/internal/tui/components"
	"filecat/internal/tui/styles"

	"github.com/dustin/go-humanize"
)

// tallyRows caps the type summary on screen
const tallyRows = 8

func RenderMainView(m common.ModelReader, theme styles.Theme) string {
	var sb strings.Builder

	sb.WriteString(theme.Title.Render("filecat: " + m.Root()))
	sb.WriteString("\n")

	switch m.Phase() {
	case common.Running:
		sb.WriteString(m.StatusView())
		if m.Stage() == organize.StageScanning && m.Scanned() > 0 {
			sb.WriteString(theme.Help.Render(fmt.Sprintf("  %s files", humanize.Comma(int64(m.Scanned())))))
		}
		sb.WriteString("\n")

	case common.Finished:
		sb.WriteString(renderSummary(m.Result(), theme))
		if narrative := m.NarrativeView(); narrative != "" {
			sb.WriteString("\n" + theme.Panel.Render(narrative) + "\n")
		}

	case common.Failed:
		sb.WriteString(RenderError(m.Err(), theme))
		sb.WriteString("\n")
		if r := m.Result(); r != nil && r.ExportPath != "" {
			sb.WriteString("\n" + renderSummary(r, theme))
		}
	}

	sb.WriteString("\n" + m.HelpView())
	return theme.App.Render(sb.String())
}

func renderSummary(r *organize.Result, theme styles.Theme) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Success.Render(fmt.Sprintf("%s files inventoried", humanize.Comma(int64(len(r.Records))))))
	sb.WriteString("\n\n")
	sb.WriteString(components.RenderTally(r.Tally, tallyRows, theme.Emphasis))
	if r.ExportPath != "" {
		sb.WriteString("\nInventory: " + r.ExportPath + "\n")
	}
	if r.NarrativePath != "" {
		sb.WriteString("Narrative: " + r.NarrativePath + "\n")
	}
	if r.HTMLPath != "" {
		sb.WriteString("HTML:      " + r.HTMLPath + "\n")
	}
	return sb.String()
}

// RenderError turns a run failure into the text shown to the user. An
// empty tree is an empty state, not an error.
func RenderError(err error, theme styles.Theme) string {
	if err == nil {
		return ""
	}

	var empty *serr.EmptyResultError
	var remote *serr.RemoteError
	switch {
	case serr.As(err, &empty):
		return theme.Warning.Render("No files found in " + empty.Root() + ".")
	case serr.IsInvalidInputError(err):
		return theme.Error.Render("Invalid folder: " + err.Error())
	case serr.As(err, &remote):
		return theme.Error.Render("Summary failed: "+err.Error()) + "\n" +
			theme.Help.Render("The inventory was still exported.")
	case serr.IsConfigNotSet(err):
		return theme.Error.Render("Missing setting: " + err.Error())
	default:
		return theme.Error.Render("Error: " + err.Error())
	}
}
