package fsops

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/filelock"
)

// RemoveFile deletes a single file. Directories are refused.
func (o *Ops) RemoveFile(path string) RemoveFileResult {
	if path == "" {
		return RemoveFileResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	info, err := o.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RemoveFileResult{Message: fmt.Sprintf("File '%s' does not exist", path)}
		}
		return RemoveFileResult{Message: fmt.Sprintf("Error removing file '%s': %v", path, err)}
	}
	if info.IsDir() {
		return RemoveFileResult{Message: fmt.Sprintf("'%s' is a directory, use remove_directory", path)}
	}
	if err := o.fs.Remove(path); err != nil {
		return RemoveFileResult{Message: fmt.Sprintf("Error removing file '%s': %v", path, err)}
	}
	return RemoveFileResult{Success: true, Message: "File removed successfully.", RemovedFile: path}
}

// ReadFile returns up to maxBytes of a file's content (<= 0 uses
// DefaultMaxReadBytes).
func (o *Ops) ReadFile(path string, maxBytes int64) ReadResult {
	if path == "" {
		return ReadResult{Message: "No file path provided"}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxReadBytes
	}
	path = o.Resolve(path)
	info, err := o.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ReadResult{Message: fmt.Sprintf("File '%s' does not exist", path)}
		}
		return ReadResult{Message: fmt.Sprintf("Error reading file '%s': %v", path, err)}
	}
	if info.IsDir() {
		return ReadResult{Message: fmt.Sprintf("'%s' is a directory, not a file", path)}
	}

	f, err := o.fs.Open(path)
	if err != nil {
		return ReadResult{Message: fmt.Sprintf("Error reading file '%s': %v", path, err)}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return ReadResult{Message: fmt.Sprintf("Error reading file '%s': %v", path, err)}
	}
	truncated := info.Size() > int64(len(data))
	msg := fmt.Sprintf("Read %d bytes from '%s'", len(data), path)
	if truncated {
		msg += fmt.Sprintf(" (truncated, file is %d bytes)", info.Size())
	}
	return ReadResult{
		Success:   true,
		Message:   msg,
		FilePath:  path,
		Content:   string(data),
		SizeBytes: info.Size(),
		Truncated: truncated,
	}
}

// WriteFile creates a file, appends to it or overwrites it. Appending to an
// existing file inserts a newline before content. Overwrites and creations are
// atomic under the file lock.
func (o *Ops) WriteFile(ctx context.Context, path, content string, appendMode bool) WriteResult {
	if path == "" {
		return WriteResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	if o.isDir(path) {
		return WriteResult{Message: fmt.Sprintf("'%s' is a directory, not a file", path)}
	}

	existed := o.exists(path)
	if existed && appendMode {
		if err := o.appendText(path, "\n"+content); err != nil {
			return WriteResult{Message: fmt.Sprintf("Error writing to file '%s': %v", path, err)}
		}
		return WriteResult{
			Success:   true,
			Message:   fmt.Sprintf("Content appended to existing file '%s'", path),
			FilePath:  path,
			Operation: OpAppended,
		}
	}

	if err := filelock.LockAndWrite(ctx, o.fs, path, []byte(content)); err != nil {
		return WriteResult{Message: fmt.Sprintf("Error writing to file '%s': %v", path, err)}
	}
	if existed {
		return WriteResult{
			Success:   true,
			Message:   fmt.Sprintf("Content written to existing file '%s' (overwritten)", path),
			FilePath:  path,
			Operation: OpOverwritten,
		}
	}
	return WriteResult{
		Success:   true,
		Message:   fmt.Sprintf("New file created and content written to '%s'", path),
		FilePath:  path,
		Operation: OpCreated,
	}
}

func (o *Ops) appendText(path, text string) error {
	if err := o.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := o.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ClearFile truncates an existing file to zero bytes.
func (o *Ops) ClearFile(ctx context.Context, path string) WriteResult {
	if path == "" {
		return WriteResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	info, err := o.fs.Stat(path)
	if err != nil {
		return WriteResult{Message: fmt.Sprintf("File '%s' does not exist", path)}
	}
	if info.IsDir() {
		return WriteResult{Message: fmt.Sprintf("'%s' is a directory, not a file", path)}
	}
	if err := filelock.LockAndWrite(ctx, o.fs, path, nil); err != nil {
		return WriteResult{Message: fmt.Sprintf("Error clearing file: %v", err)}
	}
	return WriteResult{
		Success:   true,
		Message:   fmt.Sprintf("File '%s' cleared successfully", path),
		FilePath:  path,
		Operation: OpCleared,
	}
}

// AppendTimestamp appends "[YYYY-MM-DD HH:MM:SS] message" to a file, creating
// it when missing.
func (o *Ops) AppendTimestamp(path, message string) WriteResult {
	if path == "" {
		return WriteResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	if o.isDir(path) {
		return WriteResult{Message: fmt.Sprintf("'%s' is a directory, not a file", path)}
	}

	line := "[" + o.now().Format("2006-01-02 15:04:05") + "]"
	if message != "" {
		line += " " + message
	}
	existed := o.exists(path)
	if existed {
		line = "\n" + line
	}
	if err := o.appendText(path, line); err != nil {
		return WriteResult{Message: fmt.Sprintf("Error appending timestamp: %v", err)}
	}

	op := OpCreated
	if existed {
		op = OpAppended
	}
	return WriteResult{
		Success:   true,
		Message:   fmt.Sprintf("Timestamp %s to '%s'", op, path),
		FilePath:  path,
		Operation: op,
	}
}

// CopyFile copies a file. The destination must not exist; its parent is
// created when missing.
func (o *Ops) CopyFile(src, dst string) CopyResult {
	if src == "" || dst == "" {
		return CopyResult{Message: "Both source and destination paths are required"}
	}
	src, dst = o.Resolve(src), o.Resolve(dst)
	info, err := o.fs.Stat(src)
	if err != nil {
		return CopyResult{Message: fmt.Sprintf("Source file '%s' does not exist", src)}
	}
	if info.IsDir() {
		return CopyResult{Message: fmt.Sprintf("Source '%s' is a directory, not a file", src)}
	}
	if o.exists(dst) {
		return CopyResult{Message: fmt.Sprintf("Destination file '%s' already exists", dst)}
	}
	if err := o.copyFile(src, dst); err != nil {
		return CopyResult{Message: fmt.Sprintf("Error copying file: %v", err)}
	}
	return CopyResult{
		Success:         true,
		Message:         fmt.Sprintf("File copied successfully from '%s' to '%s'", src, dst),
		SourceFile:      src,
		DestinationFile: dst,
	}
}

// RenameFile moves a file or directory. The new path must not exist.
func (o *Ops) RenameFile(oldPath, newPath string) RenameResult {
	if oldPath == "" || newPath == "" {
		return RenameResult{Message: "Both old and new paths are required"}
	}
	oldPath, newPath = o.Resolve(oldPath), o.Resolve(newPath)
	if !o.exists(oldPath) {
		return RenameResult{Message: fmt.Sprintf("File '%s' does not exist", oldPath)}
	}
	if o.exists(newPath) {
		return RenameResult{Message: fmt.Sprintf("File '%s' already exists", newPath)}
	}
	if err := o.fs.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return RenameResult{Message: fmt.Sprintf("Error renaming file: %v", err)}
	}
	if err := o.fs.Rename(oldPath, newPath); err != nil {
		return RenameResult{Message: fmt.Sprintf("Error renaming file: %v", err)}
	}
	return RenameResult{
		Success: true,
		Message: fmt.Sprintf("File renamed successfully from '%s' to '%s'", oldPath, newPath),
		OldName: oldPath,
		NewName: newPath,
	}
}

// BackupFile copies a file next to itself as name_backup_YYYYMMDD_HHMMSS.ext.
func (o *Ops) BackupFile(path string) BackupResult {
	if path == "" {
		return BackupResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	info, err := o.fs.Stat(path)
	if err != nil {
		return BackupResult{Message: fmt.Sprintf("File '%s' does not exist", path)}
	}
	if info.IsDir() {
		return BackupResult{Message: fmt.Sprintf("'%s' is a directory, not a file", path)}
	}

	backup := BackupName(path, o.now().Format("20060102_150405"))
	if o.exists(backup) {
		return BackupResult{Message: fmt.Sprintf("Backup file '%s' already exists", backup)}
	}
	if err := o.copyFile(path, backup); err != nil {
		return BackupResult{Message: fmt.Sprintf("Error creating backup: %v", err)}
	}
	return BackupResult{
		Success:      true,
		Message:      fmt.Sprintf("Backup created successfully: '%s'", backup),
		OriginalFile: path,
		BackupFile:   backup,
	}
}

// BackupName returns the backup path for path with the given stamp.
func BackupName(path, stamp string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+"_backup_"+stamp+ext)
}

// FileInfo reports size, modification time and mode of a path.
func (o *Ops) FileInfo(path string) InfoResult {
	if path == "" {
		return InfoResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	info, err := o.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return InfoResult{Message: fmt.Sprintf("File '%s' does not exist", path)}
		}
		return InfoResult{Message: fmt.Sprintf("Error getting file info: %v", err)}
	}
	return InfoResult{
		Success:      true,
		Message:      fmt.Sprintf("File information for '%s'", path),
		FilePath:     path,
		SizeBytes:    info.Size(),
		ModifiedDate: info.ModTime().Format("2006-01-02 15:04:05"),
		Mode:         info.Mode().String(),
		IsDirectory:  info.IsDir(),
	}
}

// CountLines counts newline-terminated lines plus a final unterminated line.
func (o *Ops) CountLines(path string) CountLinesResult {
	if path == "" {
		return CountLinesResult{Message: "No file path provided"}
	}
	path = o.Resolve(path)
	f, err := o.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CountLinesResult{Message: fmt.Sprintf("File '%s' does not exist", path)}
		}
		return CountLinesResult{Message: fmt.Sprintf("Error counting lines: %v", err)}
	}
	defer f.Close()

	count := 0
	var last byte = '\n'
	buf := make([]byte, copyBufferSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return CountLinesResult{Message: fmt.Sprintf("Error counting lines: %v", err)}
		}
	}
	if last != '\n' {
		count++
	}
	return CountLinesResult{
		Success:   true,
		Message:   fmt.Sprintf("File '%s' contains %d lines", path, count),
		FilePath:  path,
		LineCount: count,
	}
}

// CompareFiles compares two files line by line. The difference count is the
// number of differing line pairs plus the difference in line counts.
func (o *Ops) CompareFiles(path1, path2 string) CompareResult {
	if path1 == "" || path2 == "" {
		return CompareResult{Message: "Both file paths are required"}
	}
	path1, path2 = o.Resolve(path1), o.Resolve(path2)
	fa, msg := o.openForCompare(path1)
	if msg != "" {
		return CompareResult{Message: msg}
	}
	defer fa.Close()
	fb, msg := o.openForCompare(path2)
	if msg != "" {
		return CompareResult{Message: msg}
	}
	defer fb.Close()

	// lines are compared pairwise; lines only one file has count as differences
	ra := bufio.NewReaderSize(fa, copyBufferSize)
	rb := bufio.NewReaderSize(fb, copyBufferSize)
	diffs := 0
	for {
		la, okA, err := nextLine(ra)
		if err != nil {
			return CompareResult{Message: fmt.Sprintf("Error comparing files: %v", err)}
		}
		lb, okB, err := nextLine(rb)
		if err != nil {
			return CompareResult{Message: fmt.Sprintf("Error comparing files: %v", err)}
		}
		if !okA && !okB {
			break
		}
		if !okA || !okB || la != lb {
			diffs++
		}
	}

	if diffs == 0 {
		return CompareResult{
			Success:        true,
			Message:        fmt.Sprintf("Files '%s' and '%s' are identical", path1, path2),
			FilesIdentical: true,
		}
	}
	return CompareResult{
		Success:          true,
		Message:          fmt.Sprintf("Files '%s' and '%s' are different (%d differences found)", path1, path2, diffs),
		DifferencesFound: diffs,
	}
}

// openForCompare opens a regular file for CompareFiles. A non-empty message
// reports a failure.
func (o *Ops) openForCompare(path string) (afero.File, string) {
	info, err := o.fs.Stat(path)
	if err != nil {
		return nil, fmt.Sprintf("File '%s' does not exist", path)
	}
	if info.IsDir() {
		return nil, fmt.Sprintf("'%s' is a directory, not a file", path)
	}
	f, err := o.fs.Open(path)
	if err != nil {
		return nil, fmt.Sprintf("Error comparing files: %v", err)
	}
	return f, ""
}

// nextLine returns the next line with its terminator; ok is false at the end.
func nextLine(r *bufio.Reader) (line string, ok bool, err error) {
	line, err = r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	return line, line != "", nil
}
