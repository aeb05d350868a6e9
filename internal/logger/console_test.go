package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func newTestConsole(level string) (*ConsoleLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, level)
	cl.now = fixedNow
	return cl, buf
}

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")
		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.Level() != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.Level())
		}
		if logger.colorOutput {
			t.Error("buffers must not get color output")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "trace")
		// must not panic
		logger.LogInfo("dropped")
		logger.LogToolCall("read_file", time.Second, nil)
		logger.LogTurn(TurnSummary{ModelCalls: 1})
	})
}

func TestConsoleLogFormat(t *testing.T) {
	cl, buf := newTestConsole("info")
	cl.LogInfo("tool host ready")

	want := "[14:05:07] [INFO] tool host ready\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestConsoleLogToolCall(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		err      error
		elapsed  time.Duration
		contains []string
		empty    bool
	}{
		{
			name:     "success at debug",
			level:    "debug",
			elapsed:  120 * time.Millisecond,
			contains: []string{"[14:05:07] tool quick_search ok (120ms)"},
		},
		{
			name:  "success hidden at info",
			level: "info",
			empty: true,
		},
		{
			name:     "failure shown at info",
			level:    "info",
			err:      errors.New("connection closed"),
			elapsed:  2500 * time.Millisecond,
			contains: []string{"tool quick_search failed (2.5s): connection closed"},
		},
		{
			name:  "failure hidden at error",
			level: "error",
			err:   errors.New("boom"),
			empty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, buf := newTestConsole(tt.level)
			cl.LogToolCall("quick_search", tt.elapsed, tt.err)

			if tt.empty {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			for _, s := range tt.contains {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output %q missing %q", buf.String(), s)
				}
			}
		})
	}
}

func TestConsoleLogTurn(t *testing.T) {
	cl, buf := newTestConsole("debug")
	cl.LogTurn(TurnSummary{SessionID: "01HX", ModelCalls: 2, ToolCalls: 3, Elapsed: 90 * time.Second})

	out := buf.String()
	for _, s := range []string{"turn complete", "model calls: 2", "tool calls: 3", "session: 01HX", "(1m30s)"} {
		if !strings.Contains(out, s) {
			t.Errorf("output %q missing %q", out, s)
		}
	}

	cl, buf = newTestConsole("warn")
	cl.LogTurn(TurnSummary{ModelCalls: 10, Err: errors.New("iteration limit reached")})
	if !strings.Contains(buf.String(), "turn failed") || !strings.Contains(buf.String(), "iteration limit reached") {
		t.Errorf("failed turn output = %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{2400 * time.Millisecond, "2.4s"},
		{65 * time.Second, "1m5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestConsoleLoggerConcurrent verifies lines are never interleaved.
func TestConsoleLoggerConcurrent(t *testing.T) {
	cl, buf := newTestConsole("debug")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.LogInfo("parallel message")
			cl.LogToolCall("list_files", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 40 {
		t.Fatalf("got %d lines, want 40", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[14:05:07] ") {
			t.Errorf("malformed line %q", line)
		}
	}
}

func TestMultiLogger(t *testing.T) {
	a, bufA := newTestConsole("info")
	b, bufB := newTestConsole("debug")
	multi := NewMultiLogger(a, nil, b)

	multi.LogDebug("only b")
	multi.LogWarn("both")
	multi.LogToolCall("read_file", time.Millisecond, nil)

	if strings.Contains(bufA.String(), "only b") || !strings.Contains(bufA.String(), "both") {
		t.Errorf("logger a output = %q", bufA.String())
	}
	if !strings.Contains(bufB.String(), "only b") || !strings.Contains(bufB.String(), "tool read_file ok") {
		t.Errorf("logger b output = %q", bufB.String())
	}
}

func TestOrNoOp(t *testing.T) {
	if _, ok := OrNoOp(nil).(*NoOpLogger); !ok {
		t.Error("OrNoOp(nil) should return a NoOpLogger")
	}
	cl, _ := newTestConsole("info")
	if OrNoOp(cl) != Logger(cl) {
		t.Error("OrNoOp should pass through non-nil loggers")
	}
}
