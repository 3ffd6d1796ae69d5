package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filecat/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Change represents a filesystem event inside a watched tree
type Change struct {
	Path      string
	Timestamp time.Time
	Op        fsnotify.Op
}

// Watcher monitors directory trees for changes using fsnotify
type Watcher struct {
	// Directories being watched
	directories []string

	// Exact paths whose events are dropped
	ignored map[string]struct{}

	// Channel to receive changes
	changes chan Change

	// Channel to signal stop
	stopChan chan struct{}

	// Closed when the event loop has returned
	done chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state, directories and ignored paths
	mutex sync.RWMutex

	// Whether the watcher is running
	running bool

	// Set by Stop; a stopped watcher cannot be restarted
	closed bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		directories: []string{},
		ignored:     make(map[string]struct{}),
		changes:     make(chan Change, 64),
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
		fsWatcher:   fsWatcher,
	}, nil
}

// AddDirectory adds a single directory to watch using fsnotify
func (w *Watcher) AddDirectory(dir string) error {
	// Check if directory exists
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	// Add directory to fsnotify watcher
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	// fsnotify ignores duplicates itself; keep the list free of them too
	found := false
	for _, existingDir := range w.directories {
		if existingDir == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// AddTree watches root and every directory below it. Symlinked
// directories are not followed. Subdirectories that cannot be added are
// logged and skipped.
func (w *Watcher) AddTree(root string) error {
	if err := w.AddDirectory(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err.Error())).Warn("Cannot watch entry")
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root || !d.IsDir() {
			return nil
		}
		if err := w.AddDirectory(path); err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err.Error())).Warn("Cannot watch directory")
			return filepath.SkipDir
		}
		return nil
	})
}

// Ignore drops future events for the given exact paths
func (w *Watcher) Ignore(paths ...string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	for _, p := range paths {
		w.ignored[filepath.Clean(p)] = struct{}{}
	}
}

func (w *Watcher) isIgnored(path string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	_, ok := w.ignored[filepath.Clean(path)]
	return ok
}

// Changes returns the channel that delivers change events. It is closed by Stop.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins the file watching process using fsnotify
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return fmt.Errorf("watcher has been stopped")
	}
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	stop, done := w.stopChan, w.done
	w.mutex.Unlock()

	go w.loop(stop, done)

	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err.Error())).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || w.isIgnored(event.Name) {
		return
	}

	// New directories join the watch so files created inside them count too
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.AddTree(event.Name); err != nil {
				log.LogWithFields(log.F("path", event.Name), log.F("error", err.Error())).Warn("Cannot watch new directory")
			}
		}
	}

	change := Change{Path: event.Name, Timestamp: time.Now(), Op: event.Op}

	// Send non-blockingly; a full buffer already guarantees a rescan
	select {
	case w.changes <- change:
	default:
		log.LogWithFields(log.F("path", event.Name)).Debug("Change channel is full, dropped event")
	}
}

// Stop halts the file watching process and closes the Changes channel
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.closed = true
	if wasRunning {
		close(w.stopChan)
	}
	done := w.done
	w.mutex.Unlock()

	if wasRunning {
		<-done
	}

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err.Error())).Error("Error closing fsnotify watcher")
	}
	close(w.changes)

	log.Debug("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
