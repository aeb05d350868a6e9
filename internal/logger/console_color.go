package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for tool and turn events.
// Green: success, Red: failure, Yellow: warning thresholds, Cyan: labels.
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme returns the standard scheme. When enabled is false every
// color prints plain text regardless of the terminal.
func newColorScheme(enabled bool) *colorScheme {
	scheme := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
	if !enabled {
		for _, c := range []*color.Color{scheme.success, scheme.fail, scheme.warn, scheme.label, scheme.value} {
			c.DisableColor()
		}
	}
	return scheme
}

// formatColorizedMetric formats "label: value" with a cyan label.
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}

func formatToolStatus(err error, scheme *colorScheme) string {
	if err != nil {
		return scheme.fail.Sprint("failed")
	}
	return scheme.success.Sprint("ok")
}

// turnWarnModelCalls marks turns that needed many model round trips.
const turnWarnModelCalls = 5

// formatTurnMetrics renders "model calls: N, tool calls: N". A model call
// count at or above turnWarnModelCalls is yellow.
func formatTurnMetrics(summary TurnSummary, scheme *colorScheme) string {
	parts := make([]string, 0, 3)
	if summary.ModelCalls >= turnWarnModelCalls {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.label.Sprint("model calls"), scheme.warn.Sprint(summary.ModelCalls)))
	} else {
		parts = append(parts, formatColorizedMetric("model calls", summary.ModelCalls, scheme))
	}
	parts = append(parts, formatColorizedMetric("tool calls", summary.ToolCalls, scheme))
	if summary.SessionID != "" {
		parts = append(parts, formatColorizedMetric("session", summary.SessionID, scheme))
	}
	return strings.Join(parts, ", ")
}
