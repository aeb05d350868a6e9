package fsops

// Result types double as tool outputs: JSON tags are the wire names and every
// slice and map is non-nil.

// RemoveFileResult is returned by RemoveFile.
type RemoveFileResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RemovedFile string `json:"removed_file,omitempty"`
}

// Entry is one directory listing entry.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// ListResult is returned by ListFiles.
type ListResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Directory  string  `json:"directory,omitempty"`
	Entries    []Entry `json:"entries"`
	TotalCount int     `json:"total_count"`
}

// ReadResult is returned by ReadFile.
type ReadResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	FilePath  string `json:"file_path,omitempty"`
	Content   string `json:"content"`
	SizeBytes int64  `json:"size_bytes"`
	Truncated bool   `json:"truncated"`
}

// WriteResult is returned by the operations that modify file contents.
type WriteResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	FilePath  string `json:"file_path,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// Write operations reported in WriteResult.Operation.
const (
	OpCreated     = "created"
	OpAppended    = "appended"
	OpOverwritten = "overwritten"
	OpCleared     = "cleared"
)

// DirectoryResult is returned by CreateDirectory and RemoveDirectory.
type DirectoryResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DirectoryPath string `json:"directory_path,omitempty"`
}

// FileSearchResult is returned by SearchFiles.
type FileSearchResult struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	FoundFiles []string `json:"found_files"`
	TotalCount int      `json:"total_count"`
}

// CopyResult is returned by CopyFile.
type CopyResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	SourceFile      string `json:"source_file,omitempty"`
	DestinationFile string `json:"destination_file,omitempty"`
}

// RenameResult is returned by RenameFile.
type RenameResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OldName string `json:"old_name,omitempty"`
	NewName string `json:"new_name,omitempty"`
}

// InfoResult is returned by FileInfo.
type InfoResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FilePath     string `json:"file_path,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	ModifiedDate string `json:"modified_date,omitempty"`
	Mode         string `json:"mode,omitempty"`
	IsDirectory  bool   `json:"is_directory"`
}

// CountLinesResult is returned by CountLines.
type CountLinesResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	FilePath  string `json:"file_path,omitempty"`
	LineCount int    `json:"line_count"`
}

// CompareResult is returned by CompareFiles.
type CompareResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	FilesIdentical   bool   `json:"files_identical"`
	DifferencesFound int    `json:"differences_found"`
}

// BackupResult is returned by BackupFile.
type BackupResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	OriginalFile string `json:"original_file,omitempty"`
	BackupFile   string `json:"backup_file,omitempty"`
}

// TextMatch is one line matched by FindInFiles.
type TextMatch struct {
	File        string `json:"file"`
	LineNumber  int    `json:"line_number"`
	LineContent string `json:"line_content"`
}

// FindInFilesResult is returned by FindInFiles.
type FindInFilesResult struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	SearchText   string      `json:"search_text"`
	Matches      []TextMatch `json:"matches"`
	TotalMatches int         `json:"total_matches"`
	FilesMatched int         `json:"files_matched"`
}

// BulkResult is returned by BulkDelete and RemovePaths.
type BulkResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	ProcessedFiles []string `json:"processed_files"`
	FailedFiles    []string `json:"failed_files"`
	TotalProcessed int      `json:"total_processed"`
	BytesFreed     int64    `json:"bytes_freed"`
}

// FileSize names a file and its size.
type FileSize struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// StatsResult is returned by FileStats.
type StatsResult struct {
	Success          bool           `json:"success"`
	Message          string         `json:"message"`
	Directory        string         `json:"directory,omitempty"`
	TotalFiles       int            `json:"total_files"`
	TotalSizeBytes   int64          `json:"total_size_bytes"`
	AverageSizeBytes float64        `json:"average_size_bytes"`
	LargestFile      *FileSize      `json:"largest_file,omitempty"`
	SmallestFile     *FileSize      `json:"smallest_file,omitempty"`
	FileTypes        map[string]int `json:"file_types"`
}
