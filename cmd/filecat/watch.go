package main

import (
	"time"

	serr "filecat/internal/errors"
	"filecat/internal/organize"
	"filecat/internal/watch"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates a command for watch mode
func NewWatchCmd() *cobra.Command {
	var (
		debounce  time.Duration
		summarize bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Re-export the inventory whenever the directory changes",
		Long: `Watch a directory tree and write a fresh inventory after each burst of
changes settles. Every run is a full rescan. Summaries are off unless
--summarize is given, since each one is a remote request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(args)
			if err != nil {
				return err
			}

			runCfg := *cfg
			if debounce > 0 {
				runCfg.Watch.Debounce = debounce
			}

			engine := organize.NewOrganizer(&runCfg)
			engine.SetSummarize(summarize)

			d, err := watch.NewDaemon(&runCfg, root, engine)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			d.SetCallback(func(result *organize.Result, err error) {
				switch {
				case err == nil:
					PrintSuccess(out, "%s  %s files → %s", time.Now().Format("15:04:05"),
						humanize.Comma(int64(len(result.Records))), result.ExportPath)
				case serr.IsEmptyResult(err):
					PrintWarning(out, "%s  no files in %s", time.Now().Format("15:04:05"), root)
				default:
					PrintError(out, "%s  %v", time.Now().Format("15:04:05"), err)
				}
			})

			PrintInfo(out, "Watching %s (quiet period %s). Press Ctrl+C to stop.", root, runCfg.Watch.Debounce)
			return watch.RunUntilDone(cmd.Context(), d)
		},
	}

	cmd.Flags().DurationVarP(&debounce, "debounce", "d", 0, "Quiet period before a rescan (default from config)")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Also request a summary after every rescan")

	return cmd
}
