package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLogger writes a timestamped log file per run and keeps a latest.log
// symlink pointing at the most recent one.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates logDir when missing, opens run-YYYYMMDD-HHMMSS.log
// inside it and repoints latest.log.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== fileagent run log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n", time.Now().Format(time.RFC3339)))
	logger.writeRunLog(fmt.Sprintf("PID: %d\n\n", os.Getpid()))

	return logger, nil
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return enabled(fl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

// LogToolCall records every tool invocation at DEBUG level and failures at
// WARN level, as key=value pairs.
func (fl *FileLogger) LogToolCall(name string, elapsed time.Duration, err error) {
	level := "DEBUG"
	if err != nil {
		level = "WARN"
	}
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] tool=%s elapsed=%s", time.Now().Format("15:04:05"), level, name, formatDuration(elapsed))
	if err != nil {
		fmt.Fprintf(&sb, " status=failed error=%q", err.Error())
	} else {
		sb.WriteString(" status=ok")
	}
	sb.WriteString("\n")
	fl.writeRunLog(sb.String())
}

// LogTurn records turns at INFO level, failed turns at ERROR level.
func (fl *FileLogger) LogTurn(summary TurnSummary) {
	level := "INFO"
	if summary.Err != nil {
		level = "ERROR"
	}
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] turn", time.Now().Format("15:04:05"), level)
	if summary.SessionID != "" {
		fmt.Fprintf(&sb, " session=%s", summary.SessionID)
	}
	fmt.Fprintf(&sb, " model_calls=%d tool_calls=%d elapsed=%s", summary.ModelCalls, summary.ToolCalls, formatDuration(summary.Elapsed))
	if summary.Err != nil {
		fmt.Fprintf(&sb, " error=%q", summary.Err.Error())
	}
	sb.WriteString("\n")
	fl.writeRunLog(sb.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// flush after each write so tail -f on latest.log stays current
		fl.runLog.Sync()
	}
}
