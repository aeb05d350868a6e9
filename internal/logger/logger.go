// Package logger provides leveled logging for the fileagent tool host and
// chat client.
//
// Loggers are thread-safe. Besides plain leveled messages they record the two
// events the agent produces: a finished tool call and a finished chat turn.
package logger

import (
	"strings"
	"time"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is implemented by ConsoleLogger, FileLogger, MultiLogger and NoOpLogger.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)

	// LogToolCall records one completed tool invocation. err describes the
	// failure and is nil when the tool succeeded.
	LogToolCall(name string, elapsed time.Duration, err error)

	// LogTurn records a completed chat turn.
	LogTurn(summary TurnSummary)
}

// TurnSummary describes one user turn of the agent loop.
type TurnSummary struct {
	SessionID  string
	ModelCalls int
	ToolCalls  int
	Elapsed    time.Duration
	Err        error
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func enabled(configured, message string) bool {
	return logLevelToInt(message) >= logLevelToInt(configured)
}

// MultiLogger fans every event out to each of its loggers in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger skips nil entries.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogToolCall(name string, elapsed time.Duration, err error) {
	for _, l := range m.loggers {
		l.LogToolCall(name, elapsed, err)
	}
}

func (m *MultiLogger) LogTurn(summary TurnSummary) {
	for _, l := range m.loggers {
		l.LogTurn(summary)
	}
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNoOpLogger returns a logger for tests and for callers that pass nil.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogToolCall(string, time.Duration, error) {}
func (n *NoOpLogger) LogTurn(TurnSummary) {}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NewNoOpLogger()
	}
	return l
}
