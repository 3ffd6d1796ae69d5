package organize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/export"
	"filecat/internal/inventory"
	"filecat/internal/log"
	"filecat/internal/summarize"
	"filecat/pkg/types"

	"github.com/google/uuid"
)

// Stage identifies a step of a pipeline run.
type Stage int

const (
	StageScanning Stage = iota
	StageExporting
	StageSummarizing
	StageWriting
	StageDone
)

// String returns the user-facing name of the stage
func (s Stage) String() string {
	switch s {
	case StageScanning:
		return "Scanning"
	case StageExporting:
		return "Exporting"
	case StageSummarizing:
		return "Summarizing"
	case StageWriting:
		return "Writing narrative"
	case StageDone:
		return "Done"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageFunc observes stage transitions.
type StageFunc func(Stage)

// Result is everything one run produced. Fields after Tally are empty when
// the run stopped before reaching their stage.
type Result struct {
	ScanID        uuid.UUID
	Root          string
	Records       []types.InventoryRecord
	Tally         []types.TypeCount
	ExportPath    string
	Narrative     string
	NarrativePath string
	HTMLPath      string
	Duration      time.Duration
}

// Engine runs the scan, export and summarize pipeline for one root at a time.
type Engine struct {
	mu         sync.Mutex // Serializes runs sharing this engine
	config     *config.Config
	summarizer summarize.Summarizer
	onStage    StageFunc
	progress   inventory.ProgressFunc
	exportPath string
	format     string
	summary    *bool
}

// New creates a new Engine with the default configuration
func New() *Engine {
	return NewWithConfig(config.New())
}

// NewWithConfig creates a new Engine instance with configuration
func NewWithConfig(cfg *config.Config) *Engine {
	e := &Engine{}
	e.SetConfig(cfg)
	return e
}

// SetConfig replaces the configuration used by later runs
func (e *Engine) SetConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.New()
	}
	e.config = cfg
}

// SetSummarizer overrides the remote summarizer. Without one, each run
// builds a Gemini client from the configuration.
func (e *Engine) SetSummarizer(s summarize.Summarizer) {
	e.summarizer = s
}

// SetExportPath overrides the configured export location
func (e *Engine) SetExportPath(path string) {
	e.exportPath = path
}

// SetFormat overrides the configured export format
func (e *Engine) SetFormat(format string) {
	e.format = format
}

// SetSummarize overrides whether runs call the remote summarizer
func (e *Engine) SetSummarize(enabled bool) {
	e.summary = &enabled
}

// OnStage registers an observer for stage transitions
func (e *Engine) OnStage(fn StageFunc) {
	e.onStage = fn
}

// OnProgress registers a per-file scan progress callback
func (e *Engine) OnProgress(fn inventory.ProgressFunc) {
	e.progress = fn
}

func (e *Engine) summarizeEnabled() bool {
	if e.summary != nil {
		return *e.summary
	}
	return e.config.Summarize.Enabled
}

func (e *Engine) stage(s Stage) {
	if e.onStage != nil {
		e.onStage(s)
	}
}

// Run scans root, exports the inventory and, when enabled, asks the remote
// summarizer for a narrative that is saved beside root.
//
// Scan errors (*errors.InvalidInputError, *errors.EmptyResultError) are
// returned unchanged with a nil Result. Failures after the scan return the
// partial Result together with the error, so an export survives a failed
// summarize call.
func (e *Engine) Run(ctx context.Context, root string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.config
	start := time.Now()
	result := &Result{ScanID: uuid.New(), Root: root}
	logger := log.LogWithFields(log.F("scan_id", result.ScanID.String()), log.F("root", root))
	logger.Info("Run started")

	e.stage(StageScanning)
	opts := []inventory.Option{}
	if e.progress != nil {
		opts = append(opts, inventory.WithProgress(e.progress))
	}
	scanner, err := inventory.NewWithConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}
	records, err := scanner.ScanDirectory(ctx, root)
	if err != nil {
		logger.With(log.ErrorFields(err)...).Warn("Scan failed")
		return nil, err
	}
	result.Records = records
	result.Tally = inventory.Tally(records)

	e.stage(StageExporting)
	format := cfg.Export.Format
	if e.format != "" {
		format = e.format
	}
	exporter, err := export.New(format, cfg.Export.Sheet)
	if err != nil {
		return result, err
	}
	override := cfg.Export.Path
	if e.exportPath != "" {
		override = e.exportPath
	}
	exportPath := exporter.PathFor(root, override)
	if err := exporter.WriteFile(exportPath, records); err != nil {
		logger.With(log.ErrorFields(err)...).Error("Export failed")
		return result, err
	}
	result.ExportPath = exportPath

	if !e.summarizeEnabled() {
		return e.finish(result, start, logger), nil
	}

	e.stage(StageSummarizing)
	summarizer := e.summarizer
	if summarizer == nil {
		client, err := summarize.NewGeminiClient(cfg)
		if err != nil {
			return result, err
		}
		summarizer = client
	}

	callCtx := ctx
	if cfg.Summarize.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Summarize.Timeout)
		defer cancel()
	}
	narrative, err := summarizer.Summarize(callCtx, records)
	if err != nil {
		if !serr.IsRemoteError(err) {
			err = serr.NewRemoteError("summarize failed", summarize.ServiceName, 0, err)
		}
		logger.With(log.ErrorFields(err)...).Error("Summarize failed")
		return result, err
	}
	result.Narrative = narrative

	e.stage(StageWriting)
	narrativePath := summarize.NarrativePath(root, cfg.Summarize.NarrativeFile)
	if err := summarize.WriteNarrative(narrativePath, narrative); err != nil {
		return result, err
	}
	result.NarrativePath = narrativePath

	if cfg.Summarize.HTML {
		htmlPath := strings.TrimSuffix(narrativePath, filepath.Ext(narrativePath)) + ".html"
		title := "Files in " + filepath.Base(root)
		if err := summarize.WriteHTML(htmlPath, title, narrative); err != nil {
			return result, err
		}
		result.HTMLPath = htmlPath
	}

	return e.finish(result, start, logger), nil
}

func (e *Engine) finish(result *Result, start time.Time, logger *log.Entry) *Result {
	result.Duration = time.Since(start)
	e.stage(StageDone)
	logger.With(
		log.F("files", len(result.Records)),
		log.F("types", len(result.Tally)),
		log.F("export", result.ExportPath),
		log.F("duration", result.Duration.String()),
	).Info("Run complete")
	return result
}
