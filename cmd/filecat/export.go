package main

import (
	"filecat/internal/organize"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export [directory]",
		Short: "Write the file inventory to a spreadsheet",
		Long: `Scan a directory and write the inventory without asking for a summary.
By default the file is scan_results.xlsx in the directory's parent.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(args)
			if err != nil {
				return err
			}

			engine := organize.NewOrganizer(cfg)
			engine.SetSummarize(false)
			if format != "" {
				engine.SetFormat(format)
			}
			if output != "" {
				engine.SetExportPath(output)
			}

			result, err := engine.Run(cmd.Context(), root)
			if err != nil {
				return handleEmpty(cmd, err)
			}
			PrintSuccess(cmd.OutOrStdout(), "Exported %s files to %s",
				humanize.Comma(int64(len(result.Records))), result.ExportPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: xlsx, csv or json (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export file path (default is next to the directory)")

	return cmd
}
