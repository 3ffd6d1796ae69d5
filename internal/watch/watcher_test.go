package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor reads changes until one matches or the timeout expires.
func waitFor(t *testing.T, ch <-chan Change, match func(Change) bool) Change {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case change, ok := <-ch:
			require.True(t, ok, "Change channel closed unexpectedly")
			t.Logf("Received change: %+v", change)
			if match(change) {
				return change
			}
		case <-timeout:
			t.Fatal("Timeout waiting for change")
			return Change{}
		}
	}
}

func TestWatcherFsnotify(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New()
	require.NoError(t, err, "New watcher creation failed")

	require.NoError(t, w.AddDirectory(tempDir), "Failed to add directory to watcher")
	require.NoError(t, w.Start(), "Failed to start watcher")
	defer w.Stop()

	changes := w.Changes()
	require.NotNil(t, changes)

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	// --- File creation ---
	testFilePath := filepath.Join(tempDir, "testfile.txt")
	file, err := os.Create(testFilePath)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	change := waitFor(t, changes, func(c Change) bool {
		return c.Path == testFilePath && c.Op.Has(fsnotify.Create)
	})
	assert.False(t, change.Timestamp.IsZero())

	// --- File write ---
	require.NoError(t, os.WriteFile(testFilePath, []byte("hello world"), 0644))
	waitFor(t, changes, func(c Change) bool {
		return c.Path == testFilePath && c.Op.Has(fsnotify.Write)
	})

	// --- File removal ---
	require.NoError(t, os.Remove(testFilePath))
	waitFor(t, changes, func(c Change) bool {
		return c.Path == testFilePath && c.Op.Has(fsnotify.Remove)
	})

	// --- Stop closes the channel ---
	w.Stop()
	assert.False(t, w.IsRunning())

	closed := time.After(time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-closed:
			t.Fatal("Timeout waiting for change channel to close after stop")
		}
	}
}

func TestWatcherTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "c"), 0755))

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.AddTree(root))

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
		filepath.Join(root, "c"),
	}, w.GetDirectories())

	require.NoError(t, w.Start())
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	// A file deep in the tree is seen
	deep := filepath.Join(root, "a", "b", "deep.txt")
	require.NoError(t, os.WriteFile(deep, []byte("x"), 0644))
	waitFor(t, w.Changes(), func(c Change) bool { return c.Path == deep })

	// A directory created after Start is watched too
	fresh := filepath.Join(root, "fresh")
	require.NoError(t, os.Mkdir(fresh, 0755))
	waitFor(t, w.Changes(), func(c Change) bool { return c.Path == fresh })
	assert.Contains(t, w.GetDirectories(), fresh)

	inner := filepath.Join(fresh, "inner.txt")
	require.NoError(t, os.WriteFile(inner, []byte("x"), 0644))
	waitFor(t, w.Changes(), func(c Change) bool { return c.Path == inner })
}

func TestWatcherIgnore(t *testing.T) {
	root := t.TempDir()
	ignored := filepath.Join(root, "scan_results.csv")
	seen := filepath.Join(root, "seen.txt")

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(root))
	w.Ignore(ignored)
	require.NoError(t, w.Start())
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(seen, []byte("x"), 0644))

	change := waitFor(t, w.Changes(), func(c Change) bool { return c.Path == seen || c.Path == ignored })
	assert.Equal(t, seen, change.Path, "events for ignored paths must be dropped")
}

func TestWatcherErrors(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.Error(t, w.AddDirectory(filepath.Join(dir, "missing")))
	assert.Error(t, w.AddDirectory(file))
	assert.Error(t, w.AddTree(filepath.Join(dir, "missing")))

	require.NoError(t, w.Start())
	assert.Error(t, w.Start(), "second Start must fail")
	w.Stop()
	w.Stop()
	assert.Error(t, w.Start(), "a stopped watcher cannot restart")
}
