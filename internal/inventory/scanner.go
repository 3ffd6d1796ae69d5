// Package inventory walks a directory tree and produces one classified
// record per file.
package inventory

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"filecat/internal/classify"
	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/log"
	"filecat/pkg/types"

	"github.com/gobwas/glob"
)

// ProgressFunc is called after each recorded file with the running count.
type ProgressFunc func(scanned int, path string)

// Scanner performs single-pass inventory scans. A Scanner holds no state
// between scans and may be reused.
type Scanner struct {
	patterns []string
	excludes []glob.Glob
	maxDepth int
	progress ProgressFunc
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExclude skips files and directories whose name or root-relative
// path matches any of the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) { s.patterns = append(s.patterns, patterns...) }
}

// WithMaxDepth limits how many path components below the root a file may
// have. 1 records only the root's own files; 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) { s.maxDepth = depth }
}

// WithProgress registers a callback invoked for every recorded file.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) { s.progress = fn }
}

// New creates a Scanner. It fails only if an exclude pattern does not compile.
func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	for _, pattern := range s.patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, serr.NewConfigError("invalid exclude pattern", pattern, serr.InvalidConfig, err)
		}
		s.excludes = append(s.excludes, g)
	}
	return s, nil
}

// NewWithConfig creates a Scanner from the scan section of cfg. Extra
// options are applied after the configured ones.
func NewWithConfig(cfg *config.Config, opts ...Option) (*Scanner, error) {
	base := []Option{
		WithExclude(cfg.Scan.Exclude...),
		WithMaxDepth(cfg.Scan.MaxDepth),
	}
	return New(append(base, opts...)...)
}

// ScanDirectory scans root with a default Scanner.
func ScanDirectory(ctx context.Context, root string) ([]types.InventoryRecord, error) {
	s, _ := New()
	return s.ScanDirectory(ctx, root)
}

// ScanDirectory recursively records every regular file under root in
// lexical walk order.
//
// It returns *errors.InvalidInputError when root is missing, unreadable
// or not a directory, and *errors.EmptyResultError when the tree holds no files.
// Unreadable entries are logged and skipped. Symlinks to files are
// recorded; symlinked directories are never entered.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) ([]types.InventoryRecord, error) {
	logger := log.LogWithFields(log.F("root", root))

	info, err := os.Stat(root)
	if err != nil {
		return nil, serr.NewInvalidInputError("cannot access scan root", err).WithContext("path", root)
	}
	if !info.IsDir() {
		return nil, serr.NewInvalidInputError("scan root is not a directory", nil).WithContext("path", root)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, serr.NewInvalidInputError("cannot resolve scan root", err).WithContext("path", root)
	}

	var records []types.InventoryRecord
	skipped := 0

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == absRoot {
				return serr.NewInvalidInputError("cannot read scan root", err).WithContext("path", root)
			}
			skipped++
			logger.With(log.F("path", path), log.F("error", err.Error())).Warn("Skipping unreadable entry")
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if s.excluded(rel, d.Name()) {
			logger.Debugf("Excluded %s", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.maxDepth > 0 && depth(rel) >= s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !isRegularFile(path, d) {
			return nil
		}

		records = append(records, newRecord(path, d.Name()))
		if s.progress != nil {
			s.progress(len(records), path)
		}
		return nil
	})
	if walkErr != nil {
		if serr.IsInvalidInputError(walkErr) {
			return nil, walkErr
		}
		return nil, serr.Wrapf(walkErr, "scan of %s stopped", root)
	}

	if len(records) == 0 {
		return nil, serr.NewEmptyResultError(root)
	}

	logger.With(log.F("files", len(records)), log.F("skipped", skipped)).Info("Scan complete")
	return records, nil
}

func (s *Scanner) excluded(rel, name string) bool {
	slashed := filepath.ToSlash(rel)
	for _, g := range s.excludes {
		if g.Match(name) || g.Match(slashed) {
			return true
		}
	}
	return false
}

// depth counts the path components of a root-relative path.
func depth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	target, err := os.Stat(path)
	if err != nil {
		log.LogWithFields(log.F("path", path), log.F("error", err.Error())).Debug("Ignoring broken symlink")
		return false
	}
	return target.Mode().IsRegular()
}

// newRecord splits path into volume and volume-relative directory and
// classifies the file name.
func newRecord(path, name string) types.InventoryRecord {
	volume, directory := SplitVolume(filepath.Dir(path))
	return types.InventoryRecord{
		Volume:    volume,
		Directory: directory,
		Filename:  name,
		FileType:  classify.Classify(name),
	}
}

// SplitVolume separates an absolute directory path into its volume
// identifier (drive letter or UNC host\share, without ':' or '\') and the
// directory relative to that volume's root. The volume root itself is ".".
func SplitVolume(dir string) (volume, relative string) {
	vol := filepath.VolumeName(dir)
	relative = strings.TrimLeftFunc(dir[len(vol):], func(r rune) bool {
		return r < 128 && os.IsPathSeparator(uint8(r))
	})
	if relative == "" {
		relative = "."
	}
	return strings.Trim(vol, `:\`), relative
}

// Tally counts records per file type, largest group first and ties by label.
func Tally(records []types.InventoryRecord) []types.TypeCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.FileType]++
	}

	tally := make([]types.TypeCount, 0, len(counts))
	for fileType, n := range counts {
		tally = append(tally, types.TypeCount{FileType: fileType, Count: n})
	}
	sort.Slice(tally, func(i, j int) bool {
		if tally[i].Count != tally[j].Count {
			return tally[i].Count > tally[j].Count
		}
		return tally[i].FileType < tally[j].FileType
	})
	return tally
}
