package search

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Candidate is an entry offered to a Matcher.
type Candidate struct {
	Name   string
	Path   string
	Parent string
	IsDir  bool
	// Info comes from the directory listing; it is never nil.
	Info os.FileInfo
}

// Matcher decides whether a candidate is collected.
type Matcher func(c Candidate) bool

// MatchName reports whether name matches pattern as a substring or as a glob.
// Case folding applies to both sides unless caseSensitive is set.
func MatchName(pattern, name string, caseSensitive bool) bool {
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
		name = strings.ToLower(name)
	}
	if strings.Contains(name, pattern) {
		return true
	}
	matched, err := doublestar.Match(pattern, name)
	return err == nil && matched
}

// NamePattern matches entry names against pattern (see MatchName).
func NamePattern(pattern string, caseSensitive bool) Matcher {
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
	}
	return func(c Candidate) bool {
		return MatchName(pattern, c.Name, caseSensitive)
	}
}

// AnyGlob matches when the lower-cased name matches one of patterns as a
// whole-name glob. Unlike AnyName there is no substring fallback.
func AnyGlob(patterns []string) Matcher {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return func(c Candidate) bool {
		name := strings.ToLower(c.Name)
		for _, p := range lowered {
			if ok, err := doublestar.Match(p, name); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// AnyName matches when at least one of patterns matches the name.
func AnyName(patterns []string, caseSensitive bool) Matcher {
	matchers := make([]Matcher, 0, len(patterns))
	for _, p := range patterns {
		matchers = append(matchers, NamePattern(p, caseSensitive))
	}
	return func(c Candidate) bool {
		for _, m := range matchers {
			if m(c) {
				return true
			}
		}
		return false
	}
}

// ExtensionIn matches files whose lower-cased extension is in exts.
func ExtensionIn(exts []string) Matcher {
	set := make(map[string]bool)
	for _, ext := range NormalizeExtensions(exts) {
		set[ext] = true
	}
	return func(c Candidate) bool {
		if c.IsDir {
			return false
		}
		return set[strings.ToLower(filepath.Ext(c.Name))]
	}
}

// MinSize matches files of at least n bytes.
func MinSize(n int64) Matcher {
	return func(c Candidate) bool {
		return !c.IsDir && c.Info.Size() >= n
	}
}

// ModifiedWithin matches entries modified no longer than window before now.
func ModifiedWithin(window time.Duration, now time.Time) Matcher {
	return func(c Candidate) bool {
		return now.Sub(c.Info.ModTime()) <= window
	}
}

// OlderThan matches entries last modified at least age before now.
func OlderThan(age time.Duration, now time.Time) Matcher {
	return func(c Candidate) bool {
		return now.Sub(c.Info.ModTime()) >= age
	}
}

// All matches when every matcher matches. All() matches everything.
func All(matchers ...Matcher) Matcher {
	return func(c Candidate) bool {
		for _, m := range matchers {
			if !m(c) {
				return false
			}
		}
		return true
	}
}

// requestMatcher builds the predicate described by the request's own fields.
func requestMatcher(r Request, now time.Time) Matcher {
	var ms []Matcher
	if r.Pattern != "" {
		ms = append(ms, NamePattern(r.Pattern, r.CaseSensitive))
	}
	if len(r.Extensions) > 0 {
		ms = append(ms, ExtensionIn(r.Extensions))
	}
	if r.MinSize > 0 {
		ms = append(ms, MinSize(r.MinSize))
	}
	if r.MaxAge > 0 {
		ms = append(ms, ModifiedWithin(r.MaxAge, now))
	}
	if r.MinAge > 0 {
		ms = append(ms, OlderThan(r.MinAge, now))
	}
	return All(ms...)
}
