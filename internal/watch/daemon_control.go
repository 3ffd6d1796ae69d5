package watch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	serr "filecat/internal/errors"
	"filecat/internal/log"

	"github.com/gofrs/flock"
)

// LockPath returns the lock file guarding watches of root
func LockPath(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha1.Sum([]byte(abs))
	return filepath.Join(os.TempDir(), "filecat-watch-"+hex.EncodeToString(sum[:8])+".lock")
}

// AcquireLock takes the watch lock for root without blocking. It fails
// when another watcher, in this or another process, already holds it.
func AcquireLock(root string) (*flock.Flock, error) {
	lock := flock.New(LockPath(root))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, serr.NewFileError("failed to take watch lock", lock.Path(), serr.FileAccessDenied, err)
	}
	if !ok {
		return nil, serr.NewFileError("another watcher is already running", root, serr.InvalidOperation, nil)
	}
	return lock, nil
}

// IsDaemonRunning checks if some process currently watches root
func IsDaemonRunning(root string) bool {
	lock := flock.New(LockPath(root))
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		lock.Unlock()
		return false
	}
	return true
}

// RunUntilDone starts d and blocks until ctx is cancelled, then stops it.
// The CLI cancels ctx on SIGINT or SIGTERM.
func RunUntilDone(ctx context.Context, d *Daemon) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	log.Info("Stopping watcher...")
	d.Stop()
	return nil
}
