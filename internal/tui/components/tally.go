package components

import (
	"fmt"
	"strings"

	"filecat/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderTally lists file types with their counts, largest first. At most
// limit rows are shown; the rest are summed into one line.
func RenderTally(tally []types.TypeCount, limit int, labelStyle lipgloss.Style) string {
	if len(tally) == 0 {
		return ""
	}

	shown := tally
	if limit > 0 && len(tally) > limit {
		shown = tally[:limit]
	}

	width := 0
	for _, tc := range shown {
		if w := lipgloss.Width(tc.FileType); w > width {
			width = w
		}
	}

	var s strings.Builder
	for _, tc := range shown {
		label := tc.FileType + strings.Repeat(" ", width-lipgloss.Width(tc.FileType))
		fmt.Fprintf(&s, "%s  %s\n", labelStyle.Render(label), humanize.Comma(int64(tc.Count)))
	}

	if rest := tally[len(shown):]; len(rest) > 0 {
		others := 0
		for _, tc := range rest {
			others += tc.Count
		}
		fmt.Fprintf(&s, "… %d more types (%s files)\n", len(rest), humanize.Comma(int64(others)))
	}
	return s.String()
}
