// Package summarize turns an inventory into a prompt for a hosted
// generative-language model and handles the narrative it sends back.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"filecat/pkg/types"
)

// Preamble is the instruction placed above the inventory table.
const Preamble = "Organize the following files into a table neatly and explain briefly if needed:\n"

// Summarizer produces a narrative for an inventory.
type Summarizer interface {
	Summarize(ctx context.Context, records []types.InventoryRecord) (string, error)
}

// BuildPrompt renders records as a markdown table under Preamble. When
// maxRows is positive and smaller than the inventory, the table is cut off
// and a note states how many rows were left out.
func BuildPrompt(records []types.InventoryRecord, maxRows int) string {
	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("| Drive | Directory | Filename | File Type |\n")
	b.WriteString("|-------|-----------|----------|-----------|")

	shown := records
	if maxRows > 0 && len(records) > maxRows {
		shown = records[:maxRows]
	}
	for _, r := range shown {
		fmt.Fprintf(&b, "\n| %s | %s | %s | %s |",
			cell(r.Volume), cell(r.Directory), cell(r.Filename), cell(r.FileType))
	}

	if omitted := len(records) - len(shown); omitted > 0 {
		fmt.Fprintf(&b, "\n\n(%d more files omitted from this table.)", omitted)
	}
	return b.String()
}

// cell keeps a value from breaking the table layout.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
