package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Limits is a set of default bounds applied by a search variant to fields the
// caller left at zero.
type Limits struct {
	MaxResults    int
	MaxDepth      int
	PerDirFileCap int
	Timeout       time.Duration
}

var (
	// DriveLimits are the defaults of SearchDrive.
	DriveLimits = Limits{MaxResults: 50, MaxDepth: 3, PerDirFileCap: 100, Timeout: 10 * time.Second}
	// QuickLimits are the defaults of QuickSearch.
	QuickLimits = Limits{MaxResults: 30, MaxDepth: 2, PerDirFileCap: 50, Timeout: 10 * time.Second}
	// ExtensionLimits are the defaults of FindByExtension.
	ExtensionLimits = Limits{MaxResults: 30, MaxDepth: 3, PerDirFileCap: 100, Timeout: 8 * time.Second}
	// LargeFileLimits are the defaults of FindLargeFiles.
	LargeFileLimits = Limits{MaxResults: 50, MaxDepth: 10, PerDirFileCap: -1, Timeout: 10 * time.Second}
	// RecentLimits are the defaults of FindRecent.
	RecentLimits = Limits{MaxResults: 50, MaxDepth: 3, PerDirFileCap: -1, Timeout: 10 * time.Second}
	// TempLimits are the defaults of FindTempFiles.
	TempLimits = Limits{MaxResults: 200, MaxDepth: 3, PerDirFileCap: -1, Timeout: 10 * time.Second}
)

const (
	// DefaultLargeFileMB is the default size threshold of FindLargeFiles.
	DefaultLargeFileMB = 100
	// DefaultRecentWindow is the default lookback of FindRecent.
	DefaultRecentWindow = 24 * time.Hour
	// DefaultTempFileAge is the default minimum age of FindTempFiles.
	DefaultTempFileAge = 7 * 24 * time.Hour
)

// QuickExcluded is the exclusion list of QuickSearch.
var QuickExcluded = []string{"__pycache__", "node_modules"}

// TempPatterns are the names considered temporary by FindTempFiles.
var TempPatterns = []string{"*.tmp", "*.temp", "*.bak", "*.swp", "*~", "~$*", ".DS_Store", "Thumbs.db"}

func (l Limits) apply(req Request) Request {
	if req.MaxResults <= 0 {
		req.MaxResults = l.MaxResults
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = l.MaxDepth
	}
	if req.PerDirFileCap == 0 {
		req.PerDirFileCap = l.PerDirFileCap
	}
	if req.Timeout == 0 {
		req.Timeout = l.Timeout
	}
	return req
}

// SearchDrive searches one root by name with the drive defaults. A nil
// exclusion list is replaced by DefaultExcluded.
func (e *Engine) SearchDrive(ctx context.Context, req Request) Result {
	req = DriveLimits.apply(req)
	if req.Excluded == nil {
		req.Excluded = DefaultExcluded
	}
	return e.Search(ctx, req)
}

// QuickSearch searches a set of commonly used directories by name, sharing one
// result budget and one deadline across all of them.
func (e *Engine) QuickSearch(ctx context.Context, req Request, roots []string) Result {
	req = QuickLimits.apply(req)
	if req.Excluded == nil {
		req.Excluded = QuickExcluded
	}
	req = req.normalized()
	res := e.WalkRoots(ctx, req, roots, requestMatcher(req, e.now()))
	if res.TotalCount == 0 {
		res.Message = fmt.Sprintf("No items found in common directories (%.2fs)", res.ElapsedSeconds())
	} else {
		res.Message = fmt.Sprintf("Quick search found %d items in %.2fs", res.TotalCount, res.ElapsedSeconds())
	}
	if res.TimedOut {
		res.Message += " (search timed out)"
	}
	return res
}

// FindByExtension collects files whose extension is in exts. Zero limits take
// the ExtensionLimits defaults.
func (e *Engine) FindByExtension(ctx context.Context, root string, exts []string, maxResults, maxDepth int) Result {
	exts = NormalizeExtensions(exts)
	if len(exts) == 0 {
		return failure(root, ScopeFiles, "No valid extensions provided")
	}
	req := ExtensionLimits.apply(Request{
		Root:       root,
		Scope:      ScopeFiles,
		MaxResults: maxResults,
		MaxDepth:   maxDepth,
		Excluded:   DefaultExcluded,
	})
	res := e.Walk(ctx, req, ExtensionIn(exts))
	if !res.Success {
		return res
	}
	res.Message = fmt.Sprintf("Found %d files with extensions %s in %.2fs",
		res.TotalCount, strings.Join(exts, ", "), res.ElapsedSeconds())
	if res.TimedOut {
		res.Message += " (search timed out)"
	}
	return res
}

// FindLargeFiles collects files of at least minSizeMB megabytes, largest first.
func (e *Engine) FindLargeFiles(ctx context.Context, root string, minSizeMB float64, maxResults int) Result {
	if minSizeMB <= 0 {
		minSizeMB = DefaultLargeFileMB
	}
	req := LargeFileLimits.apply(Request{
		Root:       root,
		Scope:      ScopeFiles,
		MaxResults: maxResults,
		Excluded:   DefaultExcluded,
	})
	res := e.Walk(ctx, req, MinSize(int64(minSizeMB*1024*1024)))
	if !res.Success {
		return res
	}
	sort.SliceStable(res.Items, func(i, j int) bool {
		return *res.Items[i].Size > *res.Items[j].Size
	})
	res.Message = fmt.Sprintf("Found %d files larger than %vMB in '%s'", res.TotalCount, minSizeMB, res.Root)
	if res.TimedOut {
		res.Message += " (search timed out)"
	}
	return res
}

// FindRecent collects files modified within the given window.
func (e *Engine) FindRecent(ctx context.Context, root string, within time.Duration, maxResults int) Result {
	if within <= 0 {
		within = DefaultRecentWindow
	}
	req := RecentLimits.apply(Request{
		Root:       root,
		Scope:      ScopeFiles,
		MaxResults: maxResults,
		Excluded:   DefaultExcluded,
	})
	res := e.Walk(ctx, req, ModifiedWithin(within, e.now()))
	if !res.Success {
		return res
	}
	res.Message = fmt.Sprintf("Found %d files modified in the last %s in '%s'", res.TotalCount, within, res.Root)
	if res.TimedOut {
		res.Message += " (search timed out)"
	}
	return res
}

// FindTempFiles collects temporary files older than olderThan.
func (e *Engine) FindTempFiles(ctx context.Context, root string, olderThan time.Duration, maxResults int) Result {
	if olderThan <= 0 {
		olderThan = DefaultTempFileAge
	}
	req := TempLimits.apply(Request{
		Root:       root,
		Scope:      ScopeFiles,
		MaxResults: maxResults,
		Excluded:   DefaultExcluded,
	})
	res := e.Walk(ctx, req, All(AnyGlob(TempPatterns), OlderThan(olderThan, e.now())))
	if !res.Success {
		return res
	}
	res.Message = fmt.Sprintf("Found %d temporary files older than %s in '%s'", res.TotalCount, olderThan, res.Root)
	if res.TimedOut {
		res.Message += " (search timed out)"
	}
	return res
}

func failure(root string, scope Scope, msg string) Result {
	return Result{
		Success: false,
		Message: msg,
		Items:   []FoundItem{},
		Root:    root,
		Scope:   scope,
	}
}
