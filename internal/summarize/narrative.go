package summarize

import (
	"bytes"
	"html"
	"os"
	"path/filepath"

	serr "filecat/internal/errors"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// NarrativePath returns where the narrative for root is saved: name in the
// parent directory of root.
func NarrativePath(root, name string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return filepath.Join(filepath.Dir(abs), name)
}

// WriteNarrative saves text to path as UTF-8.
func WriteNarrative(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return serr.NewFileError("failed to write narrative", path, serr.FileCreateFailed, err)
	}
	return nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts the narrative's markdown, tables included, to an
// HTML fragment.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", serr.Wrap(err, "failed to render narrative")
	}
	return buf.String(), nil
}

// WriteHTML renders text and saves it to path as a standalone page.
func WriteHTML(path, title, text string) error {
	fragment, err := RenderHTML(text)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title>\n</head>\n<body>\n")
	buf.WriteString(fragment)
	buf.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return serr.NewFileError("failed to write narrative page", path, serr.FileCreateFailed, err)
	}
	return nil
}
