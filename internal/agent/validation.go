package agent

import (
	"fmt"
	"strings"
)

// ValidationError reports a tool call rejected before it reached the tool
// host: an unknown tool name or arguments that do not match its schema.
type ValidationError struct {
	Tool      string   // Name the model asked for
	Reason    string   // Schema or JSON problem (empty for unknown tools)
	Available []string // Known tool names, set for unknown tools
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid arguments for tool '%s': %s", e.Tool, e.Reason)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "tool '%s' not found", e.Tool)
	if len(e.Available) > 0 {
		fmt.Fprintf(&msg, "; available tools: %s", strings.Join(e.Available, ", "))
	} else {
		msg.WriteString("; the tool host offers no tools")
	}
	return msg.String()
}

// ToolError is a call the tool host executed and reported as failed.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool '%s' failed", e.Tool)
	}
	return fmt.Sprintf("tool '%s' failed: %s", e.Tool, e.Message)
}
