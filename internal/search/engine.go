package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for timeouts and age predicates.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.now = c
		}
	}
}

// Engine runs bounded searches against a filesystem. An Engine holds no
// per-search state and is safe for concurrent use.
type Engine struct {
	fs  afero.Fs
	now Clock
}

// NewEngine creates an engine reading through fs.
func NewEngine(fs afero.Fs, opts ...Option) *Engine {
	e := &Engine{fs: fs, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fs returns the filesystem the engine reads.
func (e *Engine) Fs() afero.Fs {
	return e.fs
}

// Search walks req.Root testing entries against the predicate described by the
// request fields (pattern, extensions, size and age thresholds).
func (e *Engine) Search(ctx context.Context, req Request) Result {
	req = req.normalized()
	return e.Walk(ctx, req, requestMatcher(req, e.now()))
}

// Walk walks req.Root testing entries against match.
func (e *Engine) Walk(ctx context.Context, req Request, match Matcher) Result {
	req = req.normalized()
	start := e.now()
	root := filepath.Clean(req.Root)

	if msg, ok := e.checkRoot(root); !ok {
		return Result{
			Success: false,
			Message: msg,
			Items:   []FoundItem{},
			Elapsed: e.now().Sub(start),
			Root:    root,
			Scope:   req.Scope,
		}
	}

	w := e.newWalker(ctx, req, match, start)
	w.visit(root, 0)

	res := w.result(root)
	res.Message = searchMessage(req.Pattern, res, req.MaxResults)
	return res
}

// WalkRoots walks several roots one after another with a single result budget
// and a single deadline. Roots that do not exist or are not directories are
// skipped.
func (e *Engine) WalkRoots(ctx context.Context, req Request, roots []string, match Matcher) Result {
	req = req.normalized()
	start := e.now()
	w := e.newWalker(ctx, req, match, start)

	var walked []string
	seen := make(map[string]bool)
	for _, root := range roots {
		root = filepath.Clean(root)
		if seen[root] {
			continue
		}
		seen[root] = true
		if _, ok := e.checkRoot(root); !ok {
			continue
		}
		walked = append(walked, root)
		if w.visit(root, 0) {
			break
		}
	}

	res := w.result(strings.Join(walked, string(filepath.ListSeparator)))
	res.Message = searchMessage(req.Pattern, res, req.MaxResults)
	return res
}

func (e *Engine) checkRoot(root string) (string, bool) {
	info, err := e.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Search path '%s' does not exist", root), false
		}
		return fmt.Sprintf("Cannot access search path '%s': %v", root, err), false
	}
	if !info.IsDir() {
		return fmt.Sprintf("Search path '%s' is not a directory", root), false
	}
	return "", true
}

func (e *Engine) newWalker(ctx context.Context, req Request, match Matcher, start time.Time) *walker {
	if ctx == nil {
		ctx = context.Background()
	}
	if match == nil {
		match = All()
	}
	excluded := make(map[string]bool, len(req.Excluded))
	for _, name := range req.Excluded {
		excluded[name] = true
	}
	return &walker{
		ctx:      ctx,
		fs:       e.fs,
		now:      e.now,
		req:      req,
		match:    match,
		excluded: excluded,
		start:    start,
		items:    make([]FoundItem, 0),
	}
}

// walker holds the state of one traversal. It is never shared between walks.
type walker struct {
	ctx      context.Context
	fs       afero.Fs
	now      Clock
	req      Request
	match    Matcher
	excluded map[string]bool
	start    time.Time

	items     []FoundItem
	truncated bool
	timedOut  bool
	stopped   bool
}

// shouldStop evaluates the abort conditions. Once it returns true it keeps
// returning true.
func (w *walker) shouldStop() bool {
	if w.stopped {
		return true
	}
	switch {
	case len(w.items) >= w.req.MaxResults:
		w.truncated = true
	case w.ctx.Err() != nil:
		w.timedOut = true
	case w.req.Timeout > 0 && w.now().Sub(w.start) >= w.req.Timeout:
		w.timedOut = true
	default:
		return false
	}
	w.stopped = true
	return true
}

// pruned reports whether a child directory is skipped without being visited.
func (w *walker) pruned(name string) bool {
	return strings.HasPrefix(name, ".") || w.excluded[name]
}

// visit lists dir (at the given depth below the root), tests its children and
// recurses into the surviving subdirectories. It returns true when the walk
// must stop.
func (w *walker) visit(dir string, depth int) bool {
	if w.shouldStop() {
		return true
	}
	if w.req.MaxDepth >= 0 && depth >= w.req.MaxDepth {
		return false
	}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		// unreadable directory: skip and continue with siblings
		return false
	}

	var dirs, files []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			if w.pruned(entry.Name()) {
				continue
			}
			dirs = append(dirs, entry)
			continue
		}
		files = append(files, entry)
	}

	if w.req.Scope.IncludesFolders() {
		for _, d := range dirs {
			if w.test(dir, d) {
				return true
			}
		}
	}

	if w.req.Scope.IncludesFiles() {
		limit := len(files)
		if w.req.PerDirFileCap > 0 && w.req.PerDirFileCap < limit {
			limit = w.req.PerDirFileCap
		}
		for _, f := range files[:limit] {
			if w.test(dir, f) {
				return true
			}
		}
	}

	for _, d := range dirs {
		if w.visit(filepath.Join(dir, d.Name()), depth+1) {
			return true
		}
	}
	return false
}

// test runs the predicate on one entry, collects it on a match and then
// evaluates the abort conditions.
func (w *walker) test(dir string, info os.FileInfo) bool {
	c := Candidate{
		Name:   info.Name(),
		Path:   filepath.Join(dir, info.Name()),
		Parent: dir,
		IsDir:  info.IsDir(),
		Info:   info,
	}
	if w.match(c) {
		w.items = append(w.items, newFoundItem(c))
	}
	return w.shouldStop()
}

func (w *walker) result(root string) Result {
	return Result{
		Success:    true,
		Items:      w.items,
		TotalCount: len(w.items),
		Truncated:  w.truncated,
		TimedOut:   w.timedOut,
		Elapsed:    w.now().Sub(w.start),
		Root:       root,
		Scope:      w.req.Scope,
	}
}

func newFoundItem(c Candidate) FoundItem {
	mod := c.Info.ModTime()
	item := FoundItem{
		Name:            c.Name,
		Path:            c.Path,
		ParentDirectory: c.Parent,
		Kind:            KindFolder,
		ModifiedAt:      &mod,
	}
	if !c.IsDir {
		size := c.Info.Size()
		item.Kind = KindFile
		item.Size = &size
		item.Extension = strings.ToLower(filepath.Ext(c.Name))
	}
	return item
}

func searchMessage(pattern string, res Result, maxResults int) string {
	secs := res.ElapsedSeconds()
	if res.TotalCount == 0 {
		msg := fmt.Sprintf("No items found matching '%s' in %.2fs", pattern, secs)
		if res.TimedOut {
			msg += " (search timed out - try narrowing search path)"
		}
		return msg
	}
	msg := fmt.Sprintf("Found %d items matching '%s' in %.2fs", res.TotalCount, pattern, secs)
	if res.Truncated {
		msg += fmt.Sprintf(" (limited to %d results)", maxResults)
	}
	if res.TimedOut {
		msg += " (search timed out - try narrowing search path)"
	}
	return msg
}
