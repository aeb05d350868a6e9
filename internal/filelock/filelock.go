// Package filelock serializes whole-file rewrites. Writers take an advisory
// flock on a sidecar ".lock" file (or an in-process mutex when the target
// filesystem is not the OS filesystem) and replace the target through a temp
// file and rename, so readers never observe a partial file.
package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// DefaultRetryDelay is the polling interval of LockContext.
const DefaultRetryDelay = 50 * time.Millisecond

// FileLock is an advisory inter-process lock on a path.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path. The file is created on
// first Lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock blocks until the exclusive lock is held.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// LockContext polls for the lock until it is held or ctx is done.
func (fl *FileLock) LockContext(ctx context.Context) error {
	ok, err := fl.flock.TryLockContext(ctx, DefaultRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock on %s: %w", fl.path, err)
	}
	if !ok {
		return fmt.Errorf("acquire lock on %s: lock not acquired", fl.path)
	}
	return nil
}

// TryLock attempts the lock without blocking.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite replaces path with data through a temp file in the same
// directory followed by a rename. Missing parent directories are created. On
// failure the original file is left untouched and the temp file removed.
func AtomicWrite(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	committed = true
	return nil
}

var (
	memLocksMu sync.Mutex
	memLocks   = map[string]*sync.Mutex{}
)

func memLock(path string) *sync.Mutex {
	memLocksMu.Lock()
	defer memLocksMu.Unlock()
	mu, ok := memLocks[path]
	if !ok {
		mu = &sync.Mutex{}
		memLocks[path] = mu
	}
	return mu
}

// LockAndWrite holds the lock for path while atomically replacing it. On the
// OS filesystem the lock is a flock on path+".lock", removed afterwards; on any
// other afero filesystem it is an in-process mutex keyed by path.
func LockAndWrite(ctx context.Context, fs afero.Fs, path string, data []byte) error {
	if _, ok := fs.(*afero.OsFs); !ok {
		mu := memLock(filepath.Clean(path))
		mu.Lock()
		defer mu.Unlock()
		return AtomicWrite(fs, path, data, 0o644)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	lock := NewFileLock(path + ".lock")
	if err := lock.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		lock.Unlock()
		os.Remove(lock.Path())
	}()

	return AtomicWrite(fs, path, data, 0o644)
}
