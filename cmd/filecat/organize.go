package main

import (
	"context"
	"os"
	"time"

	serr "filecat/internal/errors"
	"filecat/internal/organize"
	"filecat/internal/tui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewOrganizeCmd creates the organize command
func NewOrganizeCmd() *cobra.Command {
	var (
		useTUI    bool
		plain     bool
		noSummary bool
		html      bool
		output    string
		format    string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Inventory a directory and summarise it",
		Long: `Scan a directory, export the inventory, then ask Gemini to organise the list
into a short written summary saved as organised.txt next to the directory.
The API key is read from GEMINI_API_KEY, which may also be set in a .env file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(args)
			if err != nil {
				return err
			}

			runCfg := *cfg
			if html {
				runCfg.Summarize.HTML = true
			}
			if timeout > 0 {
				runCfg.Summarize.Timeout = timeout
			}

			engine := organize.NewOrganizer(&runCfg)
			if noSummary {
				engine.SetSummarize(false)
			}
			if format != "" {
				engine.SetFormat(format)
			}
			if output != "" {
				engine.SetExportPath(output)
			}

			out := cmd.OutOrStdout()
			var result *organize.Result
			if wantTUI(useTUI, plain) {
				result, err = tui.Run(cmd.Context(), engine, root, runCfg.Theme)
			} else {
				engine.OnStage(func(s organize.Stage) {
					if s != organize.StageDone {
						PrintInfo(out, "%s…", s)
					}
				})
				result, err = engine.Run(cmd.Context(), root)
			}

			switch {
			case err == nil:
				printResult(out, result)
				return nil
			case serr.Is(err, context.Canceled):
				PrintWarning(out, "Stopped before the run finished.")
				return nil
			case serr.IsRemoteError(err), serr.IsConfigNotSet(err):
				if result != nil && result.ExportPath != "" {
					printResult(out, result)
					PrintWarning(out, "The inventory was exported but no summary was written.")
				}
				return err
			default:
				return handleEmpty(cmd, err)
			}
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "Always show the interactive progress view")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print plain progress lines instead of the progress view")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Only export the inventory")
	cmd.Flags().BoolVar(&html, "html", false, "Also render the summary as HTML")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export file path (default is next to the directory)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: xlsx, csv or json (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Upper bound for the summary request (default from config)")
	cmd.MarkFlagsMutuallyExclusive("tui", "plain")

	return cmd
}

// wantTUI shows the progress view on a terminal unless told otherwise
func wantTUI(force, plain bool) bool {
	if plain {
		return false
	}
	if force {
		return true
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
