package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/export"
	"filecat/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleRecords = []types.InventoryRecord{
	{Volume: "", Directory: "data", Filename: "a.txt", FileType: "Text File"},
	{Volume: "", Directory: "data/sub", Filename: "b.unknownext", FileType: "Unknown"},
	{Volume: "C", Directory: `Users\me`, Filename: "photo.JPG", FileType: "JPEG Image"},
}

func TestNew(t *testing.T) {
	for _, format := range []string{config.FormatXLSX, config.FormatCSV, config.FormatJSON} {
		e, err := export.New(format, "")
		require.NoError(t, err)
		assert.Equal(t, format, e.Format())
	}

	_, err := export.New("ods", "")
	require.Error(t, err)
	assert.True(t, serr.IsInvalidConfig(err))
}

func TestDefaultPath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "photos")
	path := export.DefaultPath(root, config.FormatXLSX)
	assert.Equal(t, filepath.Join(filepath.Dir(root), "scan_results.xlsx"), path)

	e, err := export.New(config.FormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(root), "scan_results.csv"), e.PathFor(root, ""))
	assert.Equal(t, "/elsewhere/out.csv", e.PathFor(root, "/elsewhere/out.csv"))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	e, err := export.New(config.FormatXLSX, "File Scan Results")
	require.NoError(t, err)
	require.NoError(t, e.WriteFile(path, sampleRecords))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"File Scan Results"}, f.GetSheetList())

	rows, err := f.GetRows("File Scan Results")
	require.NoError(t, err)
	require.Len(t, rows, len(sampleRecords)+1)
	assert.Equal(t, types.InventoryHeaders, rows[0])
	assert.Equal(t, []string{"", "data", "a.txt", "Text File"}, rows[1])
	assert.Equal(t, []string{"C", `Users\me`, "photo.JPG", "JPEG Image"}, rows[3])
}

func TestWriteCSV(t *testing.T) {
	e, err := export.New(config.FormatCSV, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, sampleRecords))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Volume", "Directory", "Filename", "File Type"}, rows[0])
	assert.Equal(t, []string{"", "data/sub", "b.unknownext", "Unknown"}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	e, err := export.New(config.FormatJSON, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, sampleRecords))

	var decoded []types.InventoryRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleRecords, decoded)
	assert.Contains(t, buf.String(), `"relative_directory": "data/sub"`)

	buf.Reset()
	require.NoError(t, e.Write(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWriteFileReplacesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	e, err := export.New(config.FormatCSV, "")
	require.NoError(t, err)
	require.NoError(t, e.WriteFile(path, sampleRecords[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "a.txt")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFileConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.json")
	e, err := export.New(config.FormatJSON, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- e.WriteFile(path, sampleRecords)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	var decoded []types.InventoryRecord
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded), "file must hold one complete document")
	assert.Len(t, decoded, len(sampleRecords))
}

func TestWriteFileMissingDirectory(t *testing.T) {
	e, err := export.New(config.FormatCSV, "")
	require.NoError(t, err)

	err = e.WriteFile(filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv"), sampleRecords)
	require.Error(t, err)

	var fe *serr.FileError
	assert.True(t, serr.As(err, &fe))
}
