package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content.
// Names may contain slashes; parent directories are created as needed.
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		err := os.WriteFile(path, []byte(content), 0644)
		require.NoError(t, err)
	}
}

// CreateTestFilesWithDefault creates a small mixed tree:
// three files at the root and two in nested folders.
func CreateTestFilesWithDefault(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"test1.txt":             "test content 1",
		"test2.txt":             "test content 2",
		"test3.jpg":             "image content",
		"docs/report.PDF":       "pdf content",
		"docs/archive/data.bin": "binary content",
	}
	CreateTestFilesWithContent(t, dir, files)
}

// CreateTestDirs creates empty directories under dir.
func CreateTestDirs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.FromSlash(name)), 0755))
	}
}

// VolumeRelative returns path the way scan records express directories:
// without the volume and without leading separators.
func VolumeRelative(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	rel := strings.TrimLeft(abs[len(filepath.VolumeName(abs)):], `/\`)
	if rel == "" {
		return "."
	}
	return rel
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
