// Package export writes scan inventories to spreadsheet, CSV or JSON files.
package export

import (
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/log"
	"filecat/pkg/types"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"
)

// DefaultBaseName is the file name used when no export path is configured.
const DefaultBaseName = "scan_results"

// Exporter serializes inventory records in one format.
type Exporter struct {
	format string
	sheet  string
}

// New creates an Exporter for format. sheet names the xlsx worksheet.
func New(format, sheet string) (*Exporter, error) {
	switch format {
	case config.FormatXLSX, config.FormatCSV, config.FormatJSON:
	default:
		return nil, serr.NewConfigError("unsupported export format", format, serr.InvalidConfig, nil)
	}
	if sheet == "" {
		sheet = "File Scan Results"
	}
	return &Exporter{format: format, sheet: sheet}, nil
}

// NewWithConfig creates an Exporter from the export section of cfg.
func NewWithConfig(cfg *config.Config) (*Exporter, error) {
	return New(cfg.Export.Format, cfg.Export.Sheet)
}

// Format returns the exporter's format name.
func (e *Exporter) Format() string {
	return e.format
}

// DefaultPath returns scan_results.<format> in the parent of root, so the
// export never shows up in its own scan.
func DefaultPath(root, format string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return filepath.Join(filepath.Dir(abs), DefaultBaseName+"."+format)
}

// PathFor resolves where an export of root goes: override when set,
// otherwise DefaultPath.
func (e *Exporter) PathFor(root, override string) string {
	if override != "" {
		return override
	}
	return DefaultPath(root, e.format)
}

// Write serializes records to w with a header row in InventoryHeaders order.
func (e *Exporter) Write(w io.Writer, records []types.InventoryRecord) error {
	switch e.format {
	case config.FormatCSV:
		return writeCSV(w, records)
	case config.FormatJSON:
		return writeJSON(w, records)
	default:
		return e.writeXLSX(w, records)
	}
}

// WriteFile writes records to path. The file is replaced atomically and an
// advisory lock serializes concurrent writers of the same path.
func (e *Exporter) WriteFile(path string, records []types.InventoryRecord) error {
	logger := log.LogWithFields(log.F("path", path), log.F("format", e.format))

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return serr.NewFileError("failed to lock export", path, serr.FileAccessDenied, err)
	}
	defer lock.Unlock()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return serr.NewFileError("failed to create export file", path, serr.FileCreateFailed, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := e.Write(tmp, records); err != nil {
		tmp.Close()
		return serr.NewFileError("failed to write export", path, serr.FileOperationFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return serr.NewFileError("failed to write export", path, serr.FileOperationFailed, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return serr.NewFileError("failed to set export permissions", path, serr.FileOperationFailed, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return serr.NewFileError("failed to replace export", path, serr.FileOperationFailed, err)
	}

	logger.With(log.F("records", len(records))).Info("Inventory exported")
	return nil
}

// lockPath keeps lock files out of the user's folders.
func lockPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha1.Sum([]byte(abs))
	return filepath.Join(os.TempDir(), "filecat-"+hex.EncodeToString(sum[:8])+".lock")
}

func (e *Exporter) writeXLSX(w io.Writer, records []types.InventoryRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(e.sheet, "A1", &types.InventoryHeaders); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(e.sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r.Row()
		if err := f.SetSheetRow(e.sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(e.sheet, "A", "A", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(e.sheet, "B", "B", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(e.sheet, "C", "D", 30); err != nil {
		return err
	}

	return f.Write(w)
}

func writeCSV(w io.Writer, records []types.InventoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.InventoryHeaders); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, records []types.InventoryRecord) error {
	if records == nil {
		records = []types.InventoryRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
