package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/search"
)

// FoundItem is the wire form of search.FoundItem.
type FoundItem struct {
	Name            string  `json:"name"`
	Type            string  `json:"type" jsonschema:"file or folder"`
	Path            string  `json:"path"`
	ParentDirectory string  `json:"parent_directory"`
	SizeBytes       *int64  `json:"size_bytes,omitempty"`
	SizeMB          float64 `json:"size_mb,omitempty"`
	Extension       string  `json:"extension,omitempty"`
	ModifiedDate    string  `json:"modified_date,omitempty"`
}

// SearchOutput is returned by every traversal tool.
type SearchOutput struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message"`
	FoundItems     []FoundItem `json:"found_items"`
	TotalCount     int         `json:"total_count"`
	SearchType     string      `json:"search_type"`
	SearchPath     string      `json:"search_path,omitempty"`
	Truncated      bool        `json:"truncated"`
	TimedOut       bool        `json:"timed_out"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
}

type QuickSearchInput struct {
	SearchPattern string `json:"search_pattern" jsonschema:"name substring or glob, e.g. report or *.pdf"`
	SearchType    string `json:"search_type,omitempty" jsonschema:"files, folders or both (default both)"`
	MaxResults    int    `json:"max_results,omitempty" jsonschema:"maximum number of results (default 30)"`
}

type SearchDriveInput struct {
	SearchPattern string `json:"search_pattern" jsonschema:"name substring or glob, e.g. config or *.txt"`
	SearchPath    string `json:"search_path,omitempty" jsonschema:"root directory to search (default: configured root or home)"`
	SearchType    string `json:"search_type,omitempty" jsonschema:"files, folders or both (default both)"`
	MaxResults    int    `json:"max_results,omitempty" jsonschema:"maximum number of results (default 50)"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"match names case-sensitively"`
	MaxDepth      int    `json:"max_depth,omitempty" jsonschema:"maximum directory depth (default 3)"`
}

type FindByExtensionInput struct {
	Extensions string `json:"extensions" jsonschema:"comma separated extensions, e.g. .py,.js"`
	SearchPath string `json:"search_path,omitempty" jsonschema:"root directory to search"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results (default 30)"`
	MaxDepth   int    `json:"max_depth,omitempty" jsonschema:"maximum directory depth (default 3)"`
}

type FindLargeFilesInput struct {
	MinSizeMB  float64 `json:"min_size_mb,omitempty" jsonschema:"minimum size in megabytes (default 100)"`
	SearchPath string  `json:"search_path,omitempty" jsonschema:"root directory to search"`
	MaxResults int     `json:"max_results,omitempty" jsonschema:"maximum number of results (default 50)"`
}

type MonitorDirectoryInput struct {
	DirectoryPath string  `json:"directory_path,omitempty" jsonschema:"directory to inspect"`
	Hours         float64 `json:"hours,omitempty" jsonschema:"look-back window in hours (default 24)"`
	MaxResults    int     `json:"max_results,omitempty" jsonschema:"maximum number of results (default 50)"`
}

type FindDuplicatesInput struct {
	DirectoryPath string `json:"directory_path" jsonschema:"directory to scan"`
	Recursive     *bool  `json:"recursive,omitempty" jsonschema:"scan subdirectories (default true)"`
}

// DuplicateGroup is one set of files with identical content.
type DuplicateGroup struct {
	Hash      string   `json:"hash"`
	SizeBytes int64    `json:"size_bytes"`
	Count     int      `json:"count"`
	Files     []string `json:"files"`
}

type DuplicatesOutput struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	DuplicateGroups []DuplicateGroup `json:"duplicate_groups"`
	TotalDuplicates int              `json:"total_duplicates"`
	SpaceWasted     int64            `json:"space_wasted"`
	SpaceWastedText string           `json:"space_wasted_human"`
	FilesScanned    int              `json:"files_scanned"`
	FilesHashed     int              `json:"files_hashed"`
	SkippedLarge    int              `json:"skipped_large"`
	TimedOut        bool             `json:"timed_out"`
	ElapsedSeconds  float64          `json:"elapsed_seconds"`
	SearchPath      string           `json:"search_path,omitempty"`
}

type CleanupTempFilesInput struct {
	DirectoryPath string `json:"directory_path" jsonschema:"directory to clean"`
	OlderThanDays int    `json:"older_than_days,omitempty" jsonschema:"only files not modified for this many days (default 7)"`
	DryRun        *bool  `json:"dry_run,omitempty" jsonschema:"only list the files (default true)"`
}

type CleanupOutput struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	DryRun       bool        `json:"dry_run"`
	FoundItems   []FoundItem `json:"found_items"`
	TotalCount   int         `json:"total_count"`
	DeletedFiles []string    `json:"deleted_files"`
	FailedFiles  []string    `json:"failed_files"`
	BytesFreed   int64       `json:"bytes_freed"`
	SpaceFreed   string      `json:"space_freed"`
}

// ToSearchOutput converts an engine result into the tool result shape.
func ToSearchOutput(res search.Result) SearchOutput {
	items := make([]FoundItem, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, toFoundItem(it))
	}
	return SearchOutput{
		Success:        res.Success,
		Message:        res.Message,
		FoundItems:     items,
		TotalCount:     res.TotalCount,
		SearchType:     string(res.Scope),
		SearchPath:     res.Root,
		Truncated:      res.Truncated,
		TimedOut:       res.TimedOut,
		ElapsedSeconds: res.ElapsedSeconds(),
	}
}

func toFoundItem(it search.FoundItem) FoundItem {
	out := FoundItem{
		Name:            it.Name,
		Type:            string(it.Kind),
		Path:            it.Path,
		ParentDirectory: it.ParentDirectory,
		SizeBytes:       it.Size,
		Extension:       it.Extension,
	}
	if it.Size != nil {
		out.SizeMB = math.Round(float64(*it.Size)/(1024*1024)*100) / 100
	}
	if it.ModifiedAt != nil {
		out.ModifiedDate = it.ModifiedAt.Format("2006-01-02 15:04:05")
	}
	return out
}

// root resolves a tool path argument, falling back to the configured search
// root.
func (s *Server) root(path string) string {
	if strings.TrimSpace(path) == "" {
		return s.cfg.SearchRoot()
	}
	return s.ops.Resolve(path)
}

func (s *Server) excluded() []string {
	if len(s.cfg.Search.Excluded) == 0 {
		return nil
	}
	out := append([]string{}, search.DefaultExcluded...)
	return append(out, s.cfg.Search.Excluded...)
}

func (s *Server) registerSearchTools() {
	register(s, &mcp.Tool{
		Name:        "quick_search",
		Description: "Fast search in common user directories (Documents, Desktop, Downloads, etc.) and the working directory.",
	}, s.quickSearch)
	register(s, &mcp.Tool{
		Name:        "search_drive",
		Description: "Search for files and/or folders under a path with substring or glob matching, bounded by depth, result count and time.",
	}, s.searchDrive)
	register(s, &mcp.Tool{
		Name:        "find_by_extension",
		Description: "Find all files with specific extension(s) in a path.",
	}, s.findByExtension)
	register(s, &mcp.Tool{
		Name:        "find_large_files",
		Description: "Find files larger than the specified size in a path, largest first.",
	}, s.findLargeFiles)
	register(s, &mcp.Tool{
		Name:        "monitor_directory",
		Description: "List files in a directory tree modified within the last N hours.",
	}, s.monitorDirectory)
	register(s, &mcp.Tool{
		Name:        "find_duplicates",
		Description: "Find files with identical content by hashing; reports duplicate groups and wasted space.",
	}, s.findDuplicates)
	register(s, &mcp.Tool{
		Name:        "cleanup_temp_files",
		Description: "Find temporary files (*.tmp, *.bak, *~, ...) older than N days and optionally delete them. Dry run by default.",
	}, s.cleanupTempFiles)
}

func (s *Server) quickSearch(ctx context.Context, in QuickSearchInput) (SearchOutput, error) {
	scope, err := search.ParseScope(in.SearchType)
	if err != nil {
		out := ToSearchOutput(search.Result{Message: err.Error(), Scope: search.ScopeBoth})
		return out, status(false, out.Message)
	}
	req := search.Request{
		Pattern:    in.SearchPattern,
		Scope:      scope,
		MaxResults: in.MaxResults,
	}
	res := s.engine.QuickSearch(ctx, req, s.cfg.QuickRoots(s.userHome, s.workDir))
	out := ToSearchOutput(res)
	out.SearchPath = "Common user directories"
	return out, status(out.Success, out.Message)
}

func (s *Server) searchDrive(ctx context.Context, in SearchDriveInput) (SearchOutput, error) {
	scope, err := search.ParseScope(in.SearchType)
	if err != nil {
		out := ToSearchOutput(search.Result{Message: err.Error(), Scope: search.ScopeBoth})
		return out, status(false, out.Message)
	}
	maxResults := in.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.Search.MaxResults
	}
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.cfg.Search.MaxDepth
	}
	req := search.Request{
		Pattern:       in.SearchPattern,
		Root:          s.root(in.SearchPath),
		Scope:         scope,
		MaxResults:    maxResults,
		MaxDepth:      maxDepth,
		CaseSensitive: in.CaseSensitive,
		Timeout:       s.cfg.Search.Timeout.Std(),
		Excluded:      s.excluded(),
	}
	out := ToSearchOutput(s.engine.SearchDrive(ctx, req))
	return out, status(out.Success, out.Message)
}

func (s *Server) findByExtension(ctx context.Context, in FindByExtensionInput) (SearchOutput, error) {
	exts := search.ParseExtensionList(in.Extensions)
	out := ToSearchOutput(s.engine.FindByExtension(ctx, s.root(in.SearchPath), exts, in.MaxResults, in.MaxDepth))
	return out, status(out.Success, out.Message)
}

func (s *Server) findLargeFiles(ctx context.Context, in FindLargeFilesInput) (SearchOutput, error) {
	out := ToSearchOutput(s.engine.FindLargeFiles(ctx, s.root(in.SearchPath), in.MinSizeMB, in.MaxResults))
	return out, status(out.Success, out.Message)
}

func (s *Server) monitorDirectory(ctx context.Context, in MonitorDirectoryInput) (SearchOutput, error) {
	window := time.Duration(in.Hours * float64(time.Hour))
	out := ToSearchOutput(s.engine.FindRecent(ctx, s.root(in.DirectoryPath), window, in.MaxResults))
	return out, status(out.Success, out.Message)
}

func (s *Server) findDuplicates(ctx context.Context, in FindDuplicatesInput) (DuplicatesOutput, error) {
	recursive := true
	if in.Recursive != nil {
		recursive = *in.Recursive
	}
	algo, err := search.ParseHashAlgorithm(s.cfg.Search.HashAlgorithm)
	if err != nil {
		algo = search.HashSHA256
	}
	res := s.engine.FindDuplicates(ctx, s.root(in.DirectoryPath), search.DuplicateOptions{
		Recursive:   recursive,
		MaxFileSize: s.cfg.Search.MaxHashSizeMB * 1024 * 1024,
		Algorithm:   algo,
		Excluded:    s.excluded(),
		Timeout:     s.cfg.Search.Timeout.Std(),
	})

	groups := make([]DuplicateGroup, 0, len(res.Groups))
	for _, g := range res.Groups {
		groups = append(groups, DuplicateGroup{Hash: g.Hash, SizeBytes: g.Size, Count: len(g.Files), Files: g.Files})
	}
	out := DuplicatesOutput{
		Success:         res.Success,
		Message:         res.Message,
		DuplicateGroups: groups,
		TotalDuplicates: res.TotalDuplicates,
		SpaceWasted:     res.SpaceWasted,
		SpaceWastedText: search.FormatBytes(res.SpaceWasted),
		FilesScanned:    res.FilesScanned,
		FilesHashed:     res.FilesHashed,
		SkippedLarge:    res.SkippedLarge,
		TimedOut:        res.TimedOut,
		ElapsedSeconds:  math.Round(res.Elapsed.Seconds()*100) / 100,
		SearchPath:      res.Root,
	}
	return out, status(out.Success, out.Message)
}

func (s *Server) cleanupTempFiles(ctx context.Context, in CleanupTempFilesInput) (CleanupOutput, error) {
	dryRun := true
	if in.DryRun != nil {
		dryRun = *in.DryRun
	}
	age := time.Duration(in.OlderThanDays) * 24 * time.Hour
	res := s.engine.FindTempFiles(ctx, s.root(in.DirectoryPath), age, 0)

	found := ToSearchOutput(res)
	out := CleanupOutput{
		Success:      res.Success,
		Message:      res.Message,
		DryRun:       dryRun,
		FoundItems:   found.FoundItems,
		TotalCount:   found.TotalCount,
		DeletedFiles: []string{},
		FailedFiles:  []string{},
		SpaceFreed:   search.FormatBytes(0),
	}
	if !res.Success || len(res.Items) == 0 {
		return out, status(out.Success, out.Message)
	}
	if dryRun {
		var total int64
		for _, it := range res.Items {
			total += *it.Size
		}
		out.Message += fmt.Sprintf(" (dry run: %s would be freed)", search.FormatBytes(total))
		return out, nil
	}

	paths := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		paths = append(paths, it.Path)
	}
	removed := s.ops.RemovePaths(paths)
	out.Success = removed.Success
	out.Message = removed.Message
	out.DeletedFiles = removed.ProcessedFiles
	out.FailedFiles = removed.FailedFiles
	out.BytesFreed = removed.BytesFreed
	out.SpaceFreed = search.FormatBytes(removed.BytesFreed)
	return out, status(out.Success, out.Message)
}
