package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/fsops"
)

type FilePathInput struct {
	FilePath string `json:"file_path" jsonschema:"path of the file, absolute or relative to the working directory"`
}

type DirectoryInput struct {
	Directory string `json:"directory" jsonschema:"directory path, absolute or relative to the working directory"`
}

type DirectoryPathInput struct {
	DirectoryPath string `json:"directory_path" jsonschema:"directory path, absolute or relative to the working directory"`
}

type ReadFileInput struct {
	FilePath string `json:"file_path" jsonschema:"path of the file to read"`
	MaxBytes int64  `json:"max_bytes,omitempty" jsonschema:"read at most this many bytes (default 1 MiB)"`
}

type WriteFileInput struct {
	FilePath string `json:"file_path" jsonschema:"path of the file to write"`
	Content  string `json:"content,omitempty" jsonschema:"text to write"`
	Append   *bool  `json:"append,omitempty" jsonschema:"append to an existing file instead of overwriting it (default true)"`
}

type SearchFilesInput struct {
	Directory string `json:"directory" jsonschema:"directory to search"`
	Pattern   string `json:"pattern,omitempty" jsonschema:"glob pattern, ** crosses directories (default *)"`
}

type CopyFileInput struct {
	SourcePath      string `json:"source_path" jsonschema:"file to copy"`
	DestinationPath string `json:"destination_path" jsonschema:"path of the new copy; must not exist"`
}

type RenameFileInput struct {
	OldPath string `json:"old_path" jsonschema:"current path"`
	NewPath string `json:"new_path" jsonschema:"new path; must not exist"`
}

type CompareFilesInput struct {
	File1Path string `json:"file1_path" jsonschema:"first file"`
	File2Path string `json:"file2_path" jsonschema:"second file"`
}

type FindInFilesInput struct {
	Directory   string `json:"directory" jsonschema:"directory to search"`
	SearchText  string `json:"search_text" jsonschema:"text to look for, case-insensitive"`
	FilePattern string `json:"file_pattern,omitempty" jsonschema:"glob selecting the files to read (default *)"`
}

type BulkDeleteInput struct {
	Directory string `json:"directory" jsonschema:"directory containing the files"`
	Pattern   string `json:"pattern,omitempty" jsonschema:"glob of files to delete (default *backup*)"`
}

type AppendTimestampInput struct {
	FilePath string `json:"file_path" jsonschema:"file to append to"`
	Message  string `json:"message,omitempty" jsonschema:"text written after the timestamp"`
}

func (s *Server) registerFileTools() {
	register(s, &mcp.Tool{Name: "remove_file", Description: "Removes a file at the given path."},
		func(_ context.Context, in FilePathInput) (fsops.RemoveFileResult, error) {
			res := s.ops.RemoveFile(in.FilePath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "list_files", Description: "Lists files in a given directory."},
		func(_ context.Context, in DirectoryInput) (fsops.ListResult, error) {
			res := s.ops.ListFiles(in.Directory)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "read_file", Description: "Reads the content of a text file."},
		func(_ context.Context, in ReadFileInput) (fsops.ReadResult, error) {
			res := s.ops.ReadFile(in.FilePath, in.MaxBytes)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{
		Name:        "write_file",
		Description: "Creates a new file, appends content if the file exists, or overwrites it when append is false.",
	}, func(ctx context.Context, in WriteFileInput) (fsops.WriteResult, error) {
		appendMode := true
		if in.Append != nil {
			appendMode = *in.Append
		}
		res := s.ops.WriteFile(ctx, in.FilePath, in.Content, appendMode)
		return res, status(res.Success, res.Message)
	})
	register(s, &mcp.Tool{Name: "create_directory", Description: "Create a new directory/folder at the specified path."},
		func(_ context.Context, in DirectoryPathInput) (fsops.DirectoryResult, error) {
			res := s.ops.CreateDirectory(in.DirectoryPath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "remove_directory", Description: "Remove an empty directory."},
		func(_ context.Context, in DirectoryPathInput) (fsops.DirectoryResult, error) {
			res := s.ops.RemoveDirectory(in.DirectoryPath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "search_files", Description: "Search for files by glob pattern in a specified directory."},
		func(_ context.Context, in SearchFilesInput) (fsops.FileSearchResult, error) {
			res := s.ops.SearchFiles(in.Directory, in.Pattern)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "copy_file", Description: "Copy a file from source to destination path."},
		func(_ context.Context, in CopyFileInput) (fsops.CopyResult, error) {
			res := s.ops.CopyFile(in.SourcePath, in.DestinationPath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "rename_file", Description: "Rename a file from old path to new path."},
		func(_ context.Context, in RenameFileInput) (fsops.RenameResult, error) {
			res := s.ops.RenameFile(in.OldPath, in.NewPath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "file_info", Description: "Get size, modification date and mode of a file or directory."},
		func(_ context.Context, in FilePathInput) (fsops.InfoResult, error) {
			res := s.ops.FileInfo(in.FilePath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "clear_file", Description: "Clear all content from a file (make it empty)."},
		func(ctx context.Context, in FilePathInput) (fsops.WriteResult, error) {
			res := s.ops.ClearFile(ctx, in.FilePath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "count_lines", Description: "Count the number of lines in a file."},
		func(_ context.Context, in FilePathInput) (fsops.CountLinesResult, error) {
			res := s.ops.CountLines(in.FilePath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "compare_files", Description: "Compare the content of two files to check if they are identical."},
		func(_ context.Context, in CompareFilesInput) (fsops.CompareResult, error) {
			res := s.ops.CompareFiles(in.File1Path, in.File2Path)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "backup_file", Description: "Create a backup copy of a file with timestamp."},
		func(_ context.Context, in FilePathInput) (fsops.BackupResult, error) {
			res := s.ops.BackupFile(in.FilePath)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "find_in_files", Description: "Search for text content within files in a specified directory."},
		func(_ context.Context, in FindInFilesInput) (fsops.FindInFilesResult, error) {
			res := s.ops.FindInFiles(in.Directory, in.SearchText, in.FilePattern)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "bulk_delete", Description: "Delete multiple files by pattern in a specified directory."},
		func(_ context.Context, in BulkDeleteInput) (fsops.BulkResult, error) {
			res := s.ops.BulkDelete(in.Directory, in.Pattern)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "file_stats", Description: "Get statistics about all files in a specified directory."},
		func(_ context.Context, in DirectoryInput) (fsops.StatsResult, error) {
			res := s.ops.FileStats(in.Directory)
			return res, status(res.Success, res.Message)
		})
	register(s, &mcp.Tool{Name: "append_timestamp", Description: "Append current timestamp to a file."},
		func(_ context.Context, in AppendTimestampInput) (fsops.WriteResult, error) {
			res := s.ops.AppendTimestamp(in.FilePath, in.Message)
			return res, status(res.Success, res.Message)
		})
}

// ToolNames lists every registered tool in registration order.
var ToolNames = []string{
	"quick_search", "search_drive", "find_by_extension", "find_large_files",
	"monitor_directory", "find_duplicates", "cleanup_temp_files",
	"remove_file", "list_files", "read_file", "write_file", "create_directory",
	"remove_directory", "search_files", "copy_file", "rename_file", "file_info",
	"clear_file", "count_lines", "compare_files", "backup_file", "find_in_files",
	"bulk_delete", "file_stats", "append_timestamp",
}
