package types

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// InventoryRecord is one classified file found by a scan. Records are
// created once during a scan and never modified afterwards.
type InventoryRecord struct {
	Volume    string `json:"volume"`
	Directory string `json:"relative_directory"`
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
}

// InventoryHeaders is the column order shared by every tabular export.
var InventoryHeaders = []string{"Volume", "Directory", "Filename", "File Type"}

// Row returns the record's fields in InventoryHeaders order.
func (r InventoryRecord) Row() []string {
	return []string{r.Volume, r.Directory, r.Filename, r.FileType}
}

// RelativePath joins the directory and filename.
func (r InventoryRecord) RelativePath() string {
	return filepath.Join(r.Directory, r.Filename)
}

// ToJSON converts the record to a JSON string
func (r InventoryRecord) ToJSON() string {
	jsonBytes, _ := json.Marshal(r)
	return string(jsonBytes)
}

// String returns a human-readable representation
func (r InventoryRecord) String() string {
	var sb strings.Builder
	if r.Volume != "" {
		sb.WriteString(fmt.Sprintf("Volume: %s\n", r.Volume))
	}
	sb.WriteString(fmt.Sprintf("Directory: %s\n", r.Directory))
	sb.WriteString(fmt.Sprintf("File: %s\n", r.Filename))
	sb.WriteString(fmt.Sprintf("Type: %s\n", r.FileType))
	return sb.String()
}

// TypeCount is the number of records sharing a file type label.
type TypeCount struct {
	FileType string `json:"file_type"`
	Count    int    `json:"count"`
}
