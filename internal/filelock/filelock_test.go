package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "test.lock"))

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
}

func TestTryLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	first := NewFileLock(path)
	second := NewFileLock(path)

	require.NoError(t, first.Lock())
	ok, err := second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok, "second lock should not be acquired while first is held")

	require.NoError(t, first.Unlock())
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock())
}

func TestLockContext_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	holder := NewFileLock(path)
	require.NoError(t, holder.Lock())
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	err := NewFileLock(path).LockContext(ctx)
	assert.Error(t, err)
}

func TestAtomicWrite(t *testing.T) {
	tests := []struct {
		name string
		fs   func(t *testing.T) (afero.Fs, string)
	}{
		{
			name: "os filesystem",
			fs: func(t *testing.T) (afero.Fs, string) {
				return afero.NewOsFs(), t.TempDir()
			},
		},
		{
			name: "memory filesystem",
			fs: func(t *testing.T) (afero.Fs, string) {
				return afero.NewMemMapFs(), "/mem"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, dir := tt.fs(t)
			path := filepath.Join(dir, "nested", "out.txt")

			require.NoError(t, AtomicWrite(fs, path, []byte("first"), 0o644))
			require.NoError(t, AtomicWrite(fs, path, []byte("second"), 0o644))

			got, err := afero.ReadFile(fs, path)
			require.NoError(t, err)
			assert.Equal(t, "second", string(got))

			entries, err := afero.ReadDir(fs, filepath.Dir(path))
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
			}
		})
	}
}

func TestLockAndWrite_RemovesLockFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.md")

	require.NoError(t, LockAndWrite(context.Background(), afero.NewOsFs(), path, []byte("hello")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestLockAndWrite_Concurrent(t *testing.T) {
	for _, fs := range []afero.Fs{afero.NewOsFs(), afero.NewMemMapFs()} {
		dir := t.TempDir()
		path := filepath.Join(dir, "shared.txt")

		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				payload := []byte(strings.Repeat(fmt.Sprint(n), 512))
				errs <- LockAndWrite(context.Background(), fs, path, payload)
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		require.Len(t, got, 512)
		// every byte comes from a single writer
		assert.Equal(t, strings.Repeat(string(got[0]), 512), string(got))
	}
}
