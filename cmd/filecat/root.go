package main

import (
	"io/fs"
	"os"
	"path/filepath"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// annotationWritesConfig marks commands that create the --config file
const annotationWritesConfig = "writes-config"

var (
	cfgFile string
	cfg     *config.Config

	debug   bool
	logJSON bool
	logFile string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfgFile, cfg = "", nil
	debug, logJSON, logFile = false, false, ""

	rootCmd := &cobra.Command{
		Use:   "filecat",
		Short: "Catalogue every file in a folder by type",
		Long: `filecat walks a folder, labels each file by its extension and writes the
list to a spreadsheet next to the folder. It can then ask Gemini for a short
written summary of what the folder holds.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/filecat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON lines")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append logs to this file")

	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewClassifyCmd())
	rootCmd.AddCommand(NewTypesCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewOrganizeCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewGUICmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// setup loads .env and the config file, then configures logging
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !serr.Is(err, fs.ErrNotExist) {
		PrintWarning(cmd.ErrOrStderr(), "Could not read .env: %v", err)
	}

	var configErr error
	if cfgFile != "" {
		// An explicit --config must exist unless the command is about to write it
		if _, err := os.Stat(cfgFile); serr.Is(err, fs.ErrNotExist) && cmd.Annotations[annotationWritesConfig] == "" {
			return serr.NewFileError("config file not found", cfgFile, serr.FileNotFound, err)
		}
		cfg, configErr = config.LoadConfigFile(cfgFile)
		if configErr != nil {
			return configErr
		}
	} else {
		cfg, configErr = config.LoadConfig()
		if configErr != nil {
			PrintWarning(cmd.ErrOrStderr(), "Warning: %v", configErr)
			PrintInfo(cmd.ErrOrStderr(), "Using default settings. Run 'filecat config init' to write a fresh config.")
			cfg = config.New()
		}
	}

	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = debug
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	opts := []log.Option{log.WithOutput(cmd.ErrOrStderr()), log.WithDebug(cfg.Log.Debug)}
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	log.Configure(opts...)
	return nil
}

// rootArg resolves the optional directory argument, defaulting to the
// working directory
func rootArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", serr.NewInvalidInputError("cannot resolve directory", err).WithContext("path", dir)
	}
	return abs, nil
}
