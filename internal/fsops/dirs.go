package fsops

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ListFiles lists the direct entries of a directory in name order.
func (o *Ops) ListFiles(dir string) ListResult {
	res := ListResult{Entries: []Entry{}}
	if dir == "" {
		res.Message = "No directory provided"
		return res
	}
	dir = o.Resolve(dir)
	info, err := o.fs.Stat(dir)
	if err != nil {
		res.Message = fmt.Sprintf("Directory '%s' does not exist.", dir)
		return res
	}
	if !info.IsDir() {
		res.Message = fmt.Sprintf("'%s' is a file, not a directory.", dir)
		return res
	}

	entries, err := afero.ReadDir(o.fs, dir)
	if err != nil {
		res.Message = fmt.Sprintf("Error listing '%s': %v", dir, err)
		return res
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		entry := Entry{Name: e.Name(), IsDir: e.IsDir()}
		if !e.IsDir() {
			entry.Size = e.Size()
		}
		res.Entries = append(res.Entries, entry)
		names = append(names, e.Name())
	}

	res.Success = true
	res.Directory = dir
	res.TotalCount = len(res.Entries)
	if len(names) == 0 {
		res.Message = fmt.Sprintf("Directory '%s' is empty", dir)
	} else {
		res.Message = fmt.Sprintf("Files in '%s': %s", dir, strings.Join(names, ", "))
	}
	return res
}

// CreateDirectory creates a directory and any missing parents. An existing path
// is a failure.
func (o *Ops) CreateDirectory(dir string) DirectoryResult {
	if dir == "" {
		return DirectoryResult{Message: "No directory path provided"}
	}
	dir = o.Resolve(dir)
	if o.exists(dir) {
		return DirectoryResult{Message: fmt.Sprintf("Directory '%s' already exists", dir)}
	}
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return DirectoryResult{Message: fmt.Sprintf("Error creating directory: %v", err)}
	}
	return DirectoryResult{
		Success:       true,
		Message:       fmt.Sprintf("Directory created successfully: '%s'", dir),
		DirectoryPath: dir,
	}
}

// RemoveDirectory removes an empty directory.
func (o *Ops) RemoveDirectory(dir string) DirectoryResult {
	if dir == "" {
		return DirectoryResult{Message: "No directory path provided"}
	}
	dir = o.Resolve(dir)
	info, err := o.fs.Stat(dir)
	if err != nil {
		return DirectoryResult{Message: fmt.Sprintf("Directory '%s' does not exist", dir)}
	}
	if !info.IsDir() {
		return DirectoryResult{Message: fmt.Sprintf("'%s' is not a directory", dir)}
	}
	empty, err := afero.IsEmpty(o.fs, dir)
	if err != nil {
		return DirectoryResult{Message: fmt.Sprintf("Error removing directory: %v", err)}
	}
	if !empty {
		return DirectoryResult{Message: fmt.Sprintf("Directory '%s' is not empty", dir)}
	}
	if err := o.fs.Remove(dir); err != nil {
		return DirectoryResult{Message: fmt.Sprintf("Error removing directory: %v", err)}
	}
	return DirectoryResult{
		Success:       true,
		Message:       fmt.Sprintf("Directory removed successfully: '%s'", dir),
		DirectoryPath: dir,
	}
}

// FileStats summarizes the regular files directly inside a directory.
func (o *Ops) FileStats(dir string) StatsResult {
	res := StatsResult{FileTypes: map[string]int{}}
	if dir == "" {
		res.Message = "No directory provided"
		return res
	}
	dir = o.Resolve(dir)
	if !o.isDir(dir) {
		res.Message = fmt.Sprintf("Directory '%s' does not exist", dir)
		return res
	}
	entries, err := afero.ReadDir(o.fs, dir)
	if err != nil {
		res.Message = fmt.Sprintf("Error getting file stats: %v", err)
		return res
	}

	res.Success = true
	res.Directory = dir
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		res.TotalFiles++
		res.TotalSizeBytes += e.Size()
		res.FileTypes[strings.ToLower(filepath.Ext(e.Name()))]++

		fs := &FileSize{Name: e.Name(), Size: e.Size()}
		if res.LargestFile == nil || fs.Size > res.LargestFile.Size {
			res.LargestFile = fs
		}
		if res.SmallestFile == nil || fs.Size < res.SmallestFile.Size {
			res.SmallestFile = fs
		}
	}

	if res.TotalFiles == 0 {
		res.Message = "No files found in directory"
		return res
	}
	avg := float64(res.TotalSizeBytes) / float64(res.TotalFiles)
	res.AverageSizeBytes = math.Round(avg*100) / 100
	res.Message = fmt.Sprintf("Statistics for %d files in '%s'", res.TotalFiles, dir)
	return res
}
