// Package fsops implements the single-target file and directory operations
// exposed as tools: listing, reading, writing, copying, renaming, backups,
// text search inside files and directory statistics.
//
// Operations never return Go errors. Every failure (missing path, existing
// destination, permission or I/O error) is reported as Success=false with a
// message naming the path. Operations are attempted once.
package fsops

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DefaultMaxReadBytes caps ReadFile when no limit is given (1 MiB).
const DefaultMaxReadBytes int64 = 1 << 20

const copyBufferSize = 32 * 1024

// Ops runs file operations against an afero filesystem. Relative paths are
// resolved against the configured working directory.
type Ops struct {
	fs      afero.Fs
	workDir string
	now     func() time.Time
}

// Option configures Ops.
type Option func(*Ops)

// WithWorkDir sets the directory relative paths resolve against.
func WithWorkDir(dir string) Option {
	return func(o *Ops) {
		o.workDir = dir
	}
}

// WithClock sets the time source for backups and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Ops) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates Ops over fs.
func New(fs afero.Fs, opts ...Option) *Ops {
	o := &Ops{fs: fs, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fs returns the underlying filesystem.
func (o *Ops) Fs() afero.Fs {
	return o.fs
}

// Resolve returns path cleaned and, when relative, joined to the working
// directory.
func (o *Ops) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) && o.workDir != "" {
		path = filepath.Join(o.workDir, path)
	}
	return filepath.Clean(path)
}

func (o *Ops) exists(path string) bool {
	_, err := o.fs.Stat(path)
	return err == nil
}

func (o *Ops) isDir(path string) bool {
	info, err := o.fs.Stat(path)
	return err == nil && info.IsDir()
}

// copyFile copies src to dst, creating dst's parent and preserving the mode
// and modification time. dst must not exist.
func (o *Ops) copyFile(src, dst string) error {
	info, err := o.fs.Stat(src)
	if err != nil {
		return err
	}
	if err := o.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := o.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := o.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.CopyBuffer(out, in, make([]byte, copyBufferSize)); err != nil {
		out.Close()
		o.fs.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return o.fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
