package main

import (
	"fmt"

	"filecat/internal/gui"

	"github.com/spf13/cobra"
)

// NewGUICmd creates the GUI command for the CLI
func NewGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical user interface",
		Long:  `Open a desktop window to pick a folder and follow the run.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gui.IsGUIAvailable() {
				return fmt.Errorf("GUI not available in this build")
			}
			return gui.StartGUI(cfg)
		},
	}
}
