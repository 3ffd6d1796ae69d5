package main

import (
	"encoding/json"
	"fmt"
	"io"

	"filecat/internal/classify"
	serr "filecat/internal/errors"
	"filecat/internal/inventory"

	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	var jsonOutput bool
	var tallyOnly bool

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List every file in a directory with its type",
		Long: `Walk a directory tree and print one row per file with its volume, directory,
name and type. Nothing is written to disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(args)
			if err != nil {
				return err
			}

			scanner, err := inventory.NewWithConfig(cfg)
			if err != nil {
				return err
			}
			records, err := scanner.ScanDirectory(cmd.Context(), root)
			if err != nil {
				return handleEmpty(cmd, err)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput && tallyOnly:
				return writeJSON(out, inventory.Tally(records))
			case jsonOutput:
				return writeJSON(out, records)
			case tallyOnly:
				printTally(out, inventory.Tally(records))
			default:
				printRecords(out, records)
				printTally(out, inventory.Tally(records))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	cmd.Flags().BoolVarP(&tallyOnly, "tally", "t", false, "Only print the count of files per type")

	return cmd
}

// NewClassifyCmd creates the classify command
func NewClassifyCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify <filename>...",
		Short: "Show the type label for file names",
		Long:  `Label each name by its extension. Files are never opened, so the names need not exist.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type labelled struct {
				Filename string `json:"filename"`
				FileType string `json:"file_type"`
			}
			results := make([]labelled, 0, len(args))
			rows := make([][]string, 0, len(args))
			for _, name := range args {
				label := classify.Classify(name)
				results = append(results, labelled{Filename: name, FileType: label})
				rows = append(rows, []string{name, label})
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Filename", "File Type"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")

	return cmd
}

// NewTypesCmd creates the types command
func NewTypesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List every known extension and its label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			known := classify.Known()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), known)
			}
			rows := make([][]string, 0, len(known))
			for _, e := range known {
				rows = append(rows, []string{"." + e.Extension, e.Label})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Extension", "File Type"}, rows))
			PrintInfo(cmd.OutOrStdout(), "Anything else is %q.", classify.Unknown)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// handleEmpty turns an empty tree into a notice rather than a failure
func handleEmpty(cmd *cobra.Command, err error) error {
	var empty *serr.EmptyResultError
	if serr.As(err, &empty) {
		PrintWarning(cmd.OutOrStdout(), "No files found in %s.", empty.Root())
		return nil
	}
	return err
}
