package search

import (
	"fmt"
	"strings"
	"time"
)

// Scope selects which entry kinds a search tests.
type Scope string

const (
	ScopeFiles   Scope = "files"
	ScopeFolders Scope = "folders"
	ScopeBoth    Scope = "both"
)

// ParseScope converts user input into a Scope. Empty input means ScopeBoth.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "all":
		return ScopeBoth, nil
	case "files", "file":
		return ScopeFiles, nil
	case "folders", "folder", "directories", "dirs":
		return ScopeFolders, nil
	default:
		return "", fmt.Errorf("invalid search type %q, must be one of: files, folders, both", s)
	}
}

// IncludesFiles reports whether file entries are tested.
func (s Scope) IncludesFiles() bool {
	return s == ScopeFiles || s == ScopeBoth || s == ""
}

// IncludesFolders reports whether directory entries are tested.
func (s Scope) IncludesFolders() bool {
	return s == ScopeFolders || s == ScopeBoth || s == ""
}

// Kind is the kind of a found entry.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Default limits shared by the search variants.
const (
	DefaultMaxResults    = 50
	DefaultMaxDepth      = 3
	DefaultTimeout       = 10 * time.Second
	DefaultPerDirFileCap = 100
)

// DefaultExcluded lists directory names that are slow to walk and never useful
// to a user-level search.
var DefaultExcluded = []string{
	"System Volume Information",
	"$Recycle.Bin",
	"Windows",
	"Program Files",
	"Program Files (x86)",
	"AppData",
	"ProgramData",
	"Recovery",
	"node_modules",
	"__pycache__",
	"proc",
	"sys",
}

// Request describes one bounded search. A Request is copied into the walker and
// never modified once the walk starts.
type Request struct {
	// Pattern is tested against entry names (substring or glob). Empty matches everything.
	Pattern string
	// Root is the directory the walk starts from.
	Root string
	// Scope selects files, folders or both.
	Scope Scope
	// MaxResults caps the number of collected items (<= 0 uses DefaultMaxResults).
	MaxResults int
	// MaxDepth stops listing directories at this depth below Root (< 0 = unlimited).
	MaxDepth int
	// CaseSensitive disables case folding for Pattern.
	CaseSensitive bool
	// Timeout bounds the wall-clock duration of the walk (<= 0 = unlimited).
	Timeout time.Duration
	// Excluded holds directory names that are pruned before recursion.
	Excluded []string
	// Extensions restricts files to these extensions (".txt" or "txt", case-insensitive).
	Extensions []string
	// MinSize keeps files of at least this many bytes (0 = no threshold).
	MinSize int64
	// MaxAge keeps entries modified within this window (0 = no threshold).
	MaxAge time.Duration
	// MinAge keeps entries last modified at least this long ago (0 = no threshold).
	MinAge time.Duration
	// PerDirFileCap limits file entries tested per directory (0 = DefaultPerDirFileCap, < 0 = unlimited).
	PerDirFileCap int
}

// normalized returns a copy with zero values replaced by defaults.
func (r Request) normalized() Request {
	if r.Scope == "" {
		r.Scope = ScopeBoth
	}
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.PerDirFileCap == 0 {
		r.PerDirFileCap = DefaultPerDirFileCap
	}
	r.Excluded = append([]string(nil), r.Excluded...)
	r.Extensions = NormalizeExtensions(r.Extensions)
	return r
}

// NormalizeExtensions lower-cases extensions, prefixes a dot where missing and
// drops empty entries.
func NormalizeExtensions(exts []string) []string {
	var out []string
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// ParseExtensionList splits a comma separated list such as ".py,.js, html".
func ParseExtensionList(list string) []string {
	return NormalizeExtensions(strings.Split(list, ","))
}

// FoundItem is one search hit. Items are created as matches are discovered and
// never modified afterwards.
type FoundItem struct {
	Name            string
	Path            string
	ParentDirectory string
	Kind            Kind
	// Size is set for files only.
	Size       *int64
	Extension  string
	ModifiedAt *time.Time
}

// Result is the outcome of one search.
type Result struct {
	Success bool
	Message string
	// Items are in discovery order.
	Items      []FoundItem
	TotalCount int
	// Truncated is set when the walk stopped because MaxResults was reached.
	Truncated bool
	// TimedOut is set when the walk stopped because Timeout elapsed or the context ended.
	TimedOut bool
	Elapsed  time.Duration
	Root     string
	Scope    Scope
}

// ElapsedSeconds returns Elapsed rounded to two decimals.
func (r Result) ElapsedSeconds() float64 {
	return roundSeconds(r.Elapsed)
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}
