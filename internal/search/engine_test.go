package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if strings.HasSuffix(path, "/") {
			require.NoError(t, fs.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func itemNames(items []FoundItem) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

func relDepth(t *testing.T, root, path string) int {
	t.Helper()
	rel, err := filepath.Rel(root, path)
	require.NoError(t, err)
	return strings.Count(rel, string(filepath.Separator))
}

func TestSearch_CountInvariantAndTruncation(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("/data/file%03d.txt", i)] = "x"
	}
	e := NewEngine(newTestFs(t, files), WithClock(fixedClock))

	res := e.Search(context.Background(), Request{
		Pattern:       "*.txt",
		Root:          "/data",
		MaxResults:    50,
		MaxDepth:      3,
		PerDirFileCap: -1,
	})

	require.True(t, res.Success)
	assert.Len(t, res.Items, 50)
	assert.Equal(t, len(res.Items), res.TotalCount)
	assert.True(t, res.Truncated)
	assert.False(t, res.TimedOut)
	assert.Contains(t, res.Message, "Found 50 items matching '*.txt'")
	assert.Contains(t, res.Message, "(limited to 50 results)")
}

func TestSearch_DepthBound(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/root/a.txt":             "",
		"/root/l1/b.txt":          "",
		"/root/l1/l2/c.txt":       "",
		"/root/l1/l2/l3/d.txt":    "",
		"/root/l1/l2/l3/l4/e.txt": "",
	})
	e := NewEngine(fs, WithClock(fixedClock))

	tests := []struct {
		name     string
		maxDepth int
		want     []string
	}{
		{name: "zero visits nothing", maxDepth: 0, want: []string{}},
		{name: "root listing only", maxDepth: 1, want: []string{"l1", "a.txt"}},
		{name: "two levels", maxDepth: 2, want: []string{"l1", "a.txt", "l2", "b.txt"}},
		{name: "unlimited", maxDepth: -1, want: []string{"l1", "a.txt", "l2", "b.txt", "l3", "c.txt", "l4", "d.txt", "e.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Search(context.Background(), Request{Root: "/root", MaxDepth: tt.maxDepth, MaxResults: 100})
			require.True(t, res.Success)
			assert.Equal(t, tt.want, itemNames(res.Items))
			for _, it := range res.Items {
				if tt.maxDepth > 0 {
					assert.Less(t, relDepth(t, "/root", it.Path), tt.maxDepth, it.Path)
				}
			}
		})
	}
}

func TestSearch_ExcludedAndHiddenDirectoriesArePruned(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/p/keep/config.txt":              "",
		"/p/node_modules/config.txt":      "",
		"/p/node_modules/deep/config.txt": "",
		"/p/.git/config":                  "",
		"/p/.hidden-file-config":          "",
	})
	e := NewEngine(fs, WithClock(fixedClock))

	res := e.Search(context.Background(), Request{
		Pattern:    "",
		Root:       "/p",
		MaxDepth:   5,
		MaxResults: 100,
		Excluded:   []string{"node_modules"},
	})

	require.True(t, res.Success)
	for _, it := range res.Items {
		assert.NotContains(t, it.Path, "node_modules")
		assert.NotContains(t, it.Path, ".git")
	}
	// hidden files are still listed; only hidden directories are pruned
	assert.ElementsMatch(t, []string{"keep", ".hidden-file-config", "config.txt"}, itemNames(res.Items))
}

func TestSearch_Patterns(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/w/a.txt":          "",
		"/w/a.tx":           "",
		"/w/myconfig.json":  "",
		"/w/README.md":      "",
		"/w/notes/todo.TXT": "",
	})
	e := NewEngine(fs, WithClock(fixedClock))

	tests := []struct {
		name          string
		pattern       string
		caseSensitive bool
		scope         Scope
		want          []string
	}{
		{name: "glob extension", pattern: "*.txt", scope: ScopeFiles, want: []string{"a.txt", "todo.TXT"}},
		{name: "glob case sensitive", pattern: "*.txt", caseSensitive: true, scope: ScopeFiles, want: []string{"a.txt"}},
		{name: "substring", pattern: "config", scope: ScopeBoth, want: []string{"myconfig.json"}},
		{name: "substring case folding", pattern: "readme", scope: ScopeBoth, want: []string{"README.md"}},
		{name: "case sensitive substring miss", pattern: "readme", caseSensitive: true, scope: ScopeBoth, want: []string{}},
		{name: "folders only", pattern: "not", scope: ScopeFolders, want: []string{"notes"}},
		{name: "brace alternation", pattern: "*.{md,json}", scope: ScopeFiles, want: []string{"README.md", "myconfig.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Search(context.Background(), Request{
				Pattern:       tt.pattern,
				Root:          "/w",
				Scope:         tt.scope,
				MaxDepth:      3,
				CaseSensitive: tt.caseSensitive,
			})
			require.True(t, res.Success)
			assert.ElementsMatch(t, tt.want, itemNames(res.Items))
		})
	}
}

func TestSearch_MissingRoot(t *testing.T) {
	e := NewEngine(afero.NewMemMapFs(), WithClock(fixedClock))

	res := e.Search(context.Background(), Request{Pattern: "x", Root: "/nope", MaxDepth: 3})

	assert.False(t, res.Success)
	assert.Equal(t, "Search path '/nope' does not exist", res.Message)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalCount)
}

func TestSearch_RootIsFile(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/f.txt": "x"})
	e := NewEngine(fs, WithClock(fixedClock))

	res := e.Search(context.Background(), Request{Root: "/f.txt", MaxDepth: 3})

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "is not a directory")
}

func TestSearch_PerDirFileCap(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 10; i++ {
		files[fmt.Sprintf("/d/f%d.log", i)] = ""
		files[fmt.Sprintf("/d/sub/g%d.log", i)] = ""
	}
	e := NewEngine(newTestFs(t, files), WithClock(fixedClock))

	res := e.Search(context.Background(), Request{
		Pattern:       ".log",
		Root:          "/d",
		Scope:         ScopeFiles,
		MaxDepth:      3,
		PerDirFileCap: 3,
	})

	require.True(t, res.Success)
	assert.Equal(t, []string{"f0.log", "f1.log", "f2.log", "g0.log", "g1.log", "g2.log"}, itemNames(res.Items))
}

func TestSearch_Timeout(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 50; i++ {
		files[fmt.Sprintf("/t/f%02d", i)] = ""
	}
	clock := &steppingClock{now: testNow, step: time.Second}
	e := NewEngine(newTestFs(t, files), WithClock(clock.Now))

	res := e.Search(context.Background(), Request{
		Root:     "/t",
		MaxDepth: 2,
		Timeout:  5 * time.Second,
	})

	require.True(t, res.Success)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Truncated)
	assert.Less(t, res.TotalCount, 50)
	assert.Positive(t, res.TotalCount)
	assert.GreaterOrEqual(t, res.Elapsed, 5*time.Second)
	assert.Contains(t, res.Message, "(search timed out - try narrowing search path)")
}

func TestSearch_CancelledContext(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/c/a": "", "/c/b": ""})
	e := NewEngine(fs, WithClock(fixedClock))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Search(ctx, Request{Root: "/c", MaxDepth: 2})

	require.True(t, res.Success)
	assert.True(t, res.TimedOut)
	assert.Empty(t, res.Items)
}

func TestSearch_Idempotent(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/i/a/report.txt": "1",
		"/i/b/report.md":  "22",
		"/i/report.csv":   "333",
	})
	e := NewEngine(fs, WithClock(fixedClock))
	req := Request{Pattern: "report", Root: "/i", MaxDepth: 3}

	first := e.Search(context.Background(), req)
	second := e.Search(context.Background(), req)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.TotalCount, second.TotalCount)
}

func TestSearch_FoundItemFields(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/x/sub/Data.CSV": "abcd"})
	e := NewEngine(fs, WithClock(fixedClock))

	res := e.Search(context.Background(), Request{Pattern: "data", Root: "/x", MaxDepth: 3})

	require.Len(t, res.Items, 1)
	it := res.Items[0]
	assert.Equal(t, "Data.CSV", it.Name)
	assert.Equal(t, filepath.Join("/x", "sub", "Data.CSV"), it.Path)
	assert.Equal(t, filepath.Join("/x", "sub"), it.ParentDirectory)
	assert.Equal(t, KindFile, it.Kind)
	require.NotNil(t, it.Size)
	assert.Equal(t, int64(4), *it.Size)
	assert.Equal(t, ".csv", it.Extension)
	assert.NotNil(t, it.ModifiedAt)
}

func TestSearch_NoMatchMessage(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/m/a.txt": ""})
	e := NewEngine(fs, WithClock(fixedClock))

	res := e.Search(context.Background(), Request{Pattern: "zzz", Root: "/m", MaxDepth: 3})

	require.True(t, res.Success)
	assert.Equal(t, "No items found matching 'zzz' in 0.00s", res.Message)
}

func TestWalkRoots_SharedBudget(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("/home/Documents/doc%02d.txt", i)] = ""
		files[fmt.Sprintf("/home/Desktop/desk%02d.txt", i)] = ""
	}
	e := NewEngine(newTestFs(t, files), WithClock(fixedClock))

	res := e.WalkRoots(context.Background(),
		Request{MaxResults: 25, MaxDepth: 2, PerDirFileCap: -1},
		[]string{"/home/Documents", "/home/Missing", "/home/Desktop", "/home/Documents"},
		ExtensionIn([]string{"txt"}))

	require.True(t, res.Success)
	assert.Equal(t, 25, res.TotalCount)
	assert.True(t, res.Truncated)
	assert.Equal(t, "doc00.txt", res.Items[0].Name)
	assert.Equal(t, "desk00.txt", res.Items[20].Name)
}
