package organize

import (
	"context"

	"filecat/internal/config"
	"filecat/internal/inventory"
	"filecat/internal/summarize"
)

// Organizer defines the interface for inventory pipeline runs
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// SetConfig sets the config for the organizer
	SetConfig(cfg *config.Config)

	// SetSummarizer replaces the remote summarizer
	SetSummarizer(s summarize.Summarizer)

	// SetExportPath overrides where the inventory is written
	SetExportPath(path string)

	// SetFormat overrides the export format
	SetFormat(format string)

	// SetSummarize turns the remote summary on or off
	SetSummarize(enabled bool)

	// OnStage registers a stage observer
	OnStage(fn StageFunc)

	// OnProgress registers a per-file scan progress callback
	OnProgress(fn inventory.ProgressFunc)

	// Run scans, exports and summarizes root
	Run(ctx context.Context, root string) (*Result, error)
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)
