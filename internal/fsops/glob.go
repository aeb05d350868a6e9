package fsops

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

const (
	// DefaultSearchPattern is the pattern of SearchFiles and FindInFiles.
	DefaultSearchPattern = "*"
	// DefaultBulkDeletePattern is the pattern of BulkDelete.
	DefaultBulkDeletePattern = "*backup*"

	maxLineBytes = 1 << 20
)

// globFiles returns the regular files under dir whose dir-relative slash path
// matches pattern, in lexical order.
func (o *Ops) globFiles(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultSearchPattern
	}
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) || strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(o.fs, dir))
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		info, err := o.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func relName(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}

// SearchFiles lists the files in dir matching a glob pattern. Patterns are
// relative to dir and may contain "**".
func (o *Ops) SearchFiles(dir, pattern string) FileSearchResult {
	res := FileSearchResult{FoundFiles: []string{}}
	if dir == "" {
		res.Message = "No directory provided"
		return res
	}
	if pattern == "" {
		pattern = DefaultSearchPattern
	}
	dir = o.Resolve(dir)
	if !o.isDir(dir) {
		res.Message = fmt.Sprintf("Directory '%s' does not exist", dir)
		return res
	}

	files, err := o.globFiles(dir, pattern)
	if err != nil {
		res.Message = fmt.Sprintf("Error searching files: %v", err)
		return res
	}
	for _, f := range files {
		res.FoundFiles = append(res.FoundFiles, relName(dir, f))
	}
	res.Success = true
	res.TotalCount = len(res.FoundFiles)
	if res.TotalCount == 0 {
		res.Message = fmt.Sprintf("No files found matching '%s' in '%s'", pattern, dir)
	} else {
		res.Message = fmt.Sprintf("Found %d files matching '%s' in '%s'", res.TotalCount, pattern, dir)
	}
	return res
}

// FindInFiles searches the files matching filePattern for lines containing
// text, ignoring case. Files that are not valid UTF-8 or cannot be read are
// skipped.
func (o *Ops) FindInFiles(dir, text, filePattern string) FindInFilesResult {
	res := FindInFilesResult{SearchText: text, Matches: []TextMatch{}}
	if dir == "" {
		res.Message = "No directory provided"
		return res
	}
	if text == "" {
		res.Message = "No search text provided"
		return res
	}
	dir = o.Resolve(dir)
	if !o.isDir(dir) {
		res.Message = fmt.Sprintf("Directory '%s' does not exist", dir)
		return res
	}

	files, err := o.globFiles(dir, filePattern)
	if err != nil {
		res.Message = fmt.Sprintf("Error searching files: %v", err)
		return res
	}
	needle := strings.ToLower(text)
	for _, f := range files {
		matches, ok := o.grepFile(f, needle, relName(dir, f))
		if !ok || len(matches) == 0 {
			continue
		}
		res.FilesMatched++
		res.Matches = append(res.Matches, matches...)
	}

	res.Success = true
	res.TotalMatches = len(res.Matches)
	if res.TotalMatches == 0 {
		res.Message = fmt.Sprintf("No matches found for '%s'", text)
	} else {
		res.Message = fmt.Sprintf("Found '%s' in %d files", text, res.FilesMatched)
	}
	return res
}

// grepFile returns the matching lines of one file. ok is false when the file
// was skipped.
func (o *Ops) grepFile(path, needle, display string) ([]TextMatch, bool) {
	f, err := o.fs.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var matches []TextMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if !utf8.ValidString(text) {
			return nil, false
		}
		if strings.Contains(strings.ToLower(text), needle) {
			matches = append(matches, TextMatch{
				File:        display,
				LineNumber:  line,
				LineContent: strings.TrimSpace(text),
			})
		}
	}
	if scanner.Err() != nil {
		return nil, false
	}
	return matches, true
}

// BulkDelete removes the files in dir matching pattern (default "*backup*").
func (o *Ops) BulkDelete(dir, pattern string) BulkResult {
	if dir == "" {
		return BulkResult{Message: "No directory provided", ProcessedFiles: []string{}, FailedFiles: []string{}}
	}
	if pattern == "" {
		pattern = DefaultBulkDeletePattern
	}
	dir = o.Resolve(dir)
	if !o.isDir(dir) {
		return BulkResult{
			Message:        fmt.Sprintf("Directory '%s' does not exist", dir),
			ProcessedFiles: []string{},
			FailedFiles:    []string{},
		}
	}
	files, err := o.globFiles(dir, pattern)
	if err != nil {
		return BulkResult{
			Message:        fmt.Sprintf("Error in bulk delete: %v", err),
			ProcessedFiles: []string{},
			FailedFiles:    []string{},
		}
	}
	res := o.removeAll(files, func(p string) string { return relName(dir, p) })
	res.Message = fmt.Sprintf("Deleted %d files. %d failures.", res.TotalProcessed, len(res.FailedFiles))
	return res
}

// RemovePaths removes each listed file, reporting full paths.
func (o *Ops) RemovePaths(paths []string) BulkResult {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved = append(resolved, o.Resolve(p))
	}
	res := o.removeAll(resolved, func(p string) string { return p })
	res.Message = fmt.Sprintf("Deleted %d files. %d failures.", res.TotalProcessed, len(res.FailedFiles))
	return res
}

func (o *Ops) removeAll(paths []string, display func(string) string) BulkResult {
	res := BulkResult{Success: true, ProcessedFiles: []string{}, FailedFiles: []string{}}
	for _, p := range paths {
		info, err := o.fs.Stat(p)
		if err == nil && info.IsDir() {
			err = fmt.Errorf("is a directory")
		}
		if err == nil {
			err = o.fs.Remove(p)
		}
		if err != nil {
			if os.IsNotExist(err) {
				err = fmt.Errorf("does not exist")
			}
			res.FailedFiles = append(res.FailedFiles, fmt.Sprintf("%s: %v", display(p), err))
			continue
		}
		res.ProcessedFiles = append(res.ProcessedFiles, display(p))
		res.BytesFreed += info.Size()
	}
	res.TotalProcessed = len(res.ProcessedFiles)
	return res
}
