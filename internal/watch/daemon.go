package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/log"
	"filecat/internal/organize"

	"github.com/gofrs/flock"
)

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running          bool             // Whether the daemon is currently active
	Root             string           // Tree being inventoried
	WatchDirectories []string         // Directories being watched
	LastActivity     time.Time        // Time of the last change seen
	Runs             int              // Completed pipeline runs, failed ones included
	LastResult       *organize.Result // Result of the most recent run, possibly partial
	LastError        error            // Error of the most recent run
}

// Daemon keeps the inventory of one root current: every burst of changes
// is followed, after a quiet period, by a complete rescan and export.
type Daemon struct {
	// Configuration
	config *config.Config

	// Absolute root being watched
	root string

	// The file watcher
	watcher *Watcher

	// Pipeline used for every rescan
	engine organize.Organizer

	// Quiet period before a rescan
	debounce time.Duration

	// Callback for when a run finishes
	callback func(*organize.Result, error)

	// Per-root instance lock
	lock *flock.Flock

	// Statistics
	runs         int
	lastActivity time.Time
	lastResult   *organize.Result
	lastErr      error

	// Lock for modifications
	mutex sync.RWMutex

	// Whether the daemon is running
	running bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDaemon creates a daemon for root. A nil engine is taken from the
// organize factory and configured with cfg.
func NewDaemon(cfg *config.Config, root string, engine organize.Organizer) (*Daemon, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, serr.NewInvalidInputError("cannot resolve watch root", err).WithContext("path", root)
	}

	watcher, err := New()
	if err != nil {
		return nil, err
	}

	if engine == nil {
		engine = organize.NewOrganizer(cfg)
	}

	return &Daemon{
		config:   cfg,
		root:     abs,
		watcher:  watcher,
		engine:   engine,
		debounce: cfg.Watch.Debounce,
	}, nil
}

// SetCallback sets a function to be called after every run
func (d *Daemon) SetCallback(cb func(*organize.Result, error)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = cb
}

// Start takes the per-root lock, watches the tree and runs an initial
// inventory in the background. Runs stop when ctx is cancelled or Stop
// is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.running {
		return fmt.Errorf("daemon is already running")
	}

	lock, err := AcquireLock(d.root)
	if err != nil {
		return err
	}

	if err := d.watcher.AddTree(d.root); err != nil {
		lock.Unlock()
		return serr.NewInvalidInputError("cannot watch root", err).WithContext("path", d.root)
	}
	if d.config.Export.Path != "" {
		d.watcher.Ignore(d.config.Export.Path)
	}
	if err := d.watcher.Start(); err != nil {
		lock.Unlock()
		return fmt.Errorf("error starting watcher: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.lock = lock
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true

	go d.processEvents(runCtx, d.done)

	log.LogWithFields(log.F("root", d.root), log.F("debounce", d.debounce.String())).Info("Watching for changes")
	return nil
}

// Stop halts the daemon, waits for an in-flight run and releases the lock
func (d *Daemon) Stop() {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return
	}
	d.running = false
	cancel, done, lock := d.cancel, d.done, d.lock
	d.mutex.Unlock()

	cancel()
	d.watcher.Stop()
	<-done

	if err := lock.Unlock(); err != nil {
		log.LogWithFields(log.F("error", err.Error())).Warn("Failed to release watch lock")
	}
	log.LogWithFields(log.F("root", d.root)).Info("Stopped watching")
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:          d.running,
		Root:             d.root,
		WatchDirectories: d.watcher.GetDirectories(),
		LastActivity:     d.lastActivity,
		Runs:             d.runs,
		LastResult:       d.lastResult,
		LastError:        d.lastErr,
	}
}

// processEvents runs once, then again after every quiet period that
// follows at least one change.
func (d *Daemon) processEvents(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	d.rescan(ctx)

	changes := d.watcher.Changes()
	var quiet <-chan time.Time
	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			if d.isOwnOutput(change.Path) {
				continue
			}
			d.mutex.Lock()
			d.lastActivity = change.Timestamp
			d.mutex.Unlock()
			quiet = time.After(d.debounce)

		case <-quiet:
			quiet = nil
			d.rescan(ctx)

		case <-ctx.Done():
			return
		}
	}
}

// isOwnOutput reports the temporary files an export writes next to its
// target, for exports configured inside the watched tree.
func (d *Daemon) isOwnOutput(path string) bool {
	if d.config.Export.Path == "" {
		return false
	}
	prefix := "." + filepath.Base(d.config.Export.Path) + "."
	return filepath.Dir(path) == filepath.Dir(d.config.Export.Path) &&
		strings.HasPrefix(filepath.Base(path), prefix)
}

func (d *Daemon) rescan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result, err := d.engine.Run(ctx, d.root)

	logger := log.LogWithFields(log.F("root", d.root))
	switch {
	case err == nil:
		logger.With(log.F("files", len(result.Records)), log.F("export", result.ExportPath)).Info("Inventory refreshed")
	case serr.IsEmptyResult(err):
		logger.Info("Watched tree holds no files")
	case ctx.Err() != nil:
		return
	default:
		logger.With(log.ErrorFields(err)...).Error("Inventory refresh failed")
	}

	d.mutex.Lock()
	d.runs++
	d.lastResult = result
	d.lastErr = err
	cb := d.callback
	d.mutex.Unlock()

	if cb != nil {
		cb(result, err)
	}
}
